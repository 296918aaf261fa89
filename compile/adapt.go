package compile

import (
	"regexp"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/malioc/capability"
)

// Adapter specializes generic GLSL ES for one device.
type Adapter interface {
	Adapt(source string, stage gputypes.ShaderStage, caps DeviceCapabilities) string
}

// GLSLAdapter is the default Adapter. It lowers GLSL ES 3.00 to GLSL ES
// 1.00 for ES 2.0 targets on devices without ES 3 shading language support
// and enables the extensions the shader needs and the device has.
type GLSLAdapter struct{}

var _ Adapter = GLSLAdapter{}

var (
	reVersion      = regexp.MustCompile(`(?m)^#version\s+300\s+es\s*$`)
	reStageIO      = regexp.MustCompile(`^(?:layout\(([^)]*)\)\s*)?(?:(?:smooth|flat|noperspective|centroid)\s+)*(in|out)\s+(?:(?:highp|mediump|lowp)\s+)?(.+?)\s+(\w+)(\[\d+\])?;$`)
	reLocation     = regexp.MustCompile(`\blocation\s*=\s*(\d+)`)
	reUniformBlock = regexp.MustCompile(`(?:layout\([^)]*\)\s*)?uniform\s+(\w+)\s*\{([^}]*)\}\s*(\w+)?\s*;`)
	reBlockMember  = regexp.MustCompile(`[^;]+;`)
	reLayoutPrefix = regexp.MustCompile(`^layout\([^)]*\)\s*`)
	rePrecision    = regexp.MustCompile(`^precision\s+(highp|mediump|lowp)\s+(\w+)\s*;$`)
	reHighp        = regexp.MustCompile(`\bhighp\s+`)
	reCubeSampler  = regexp.MustCompile(`\buniform\s+(?:\w+\s+)?samplerCube\s+(\w+)\s*;`)
	reTextureCall  = regexp.MustCompile(`\btexture(Lod)?\(\s*(\w+)`)
	reDerivative   = regexp.MustCompile(`\b(dFdx|dFdy|fwidth)\s*\(`)
	reLodExtCall   = regexp.MustCompile(`\btexture(2D|Cube)LodEXT\s*\(`)
	reLastFragData = regexp.MustCompile(`\bgl_LastFragData\b`)
)

// Adapt implements Adapter.
func (GLSLAdapter) Adapt(source string, stage gputypes.ShaderStage, caps DeviceCapabilities) string {
	legacy := caps.Target == capability.TargetES2 && !caps.ES3ShadingLanguage
	if legacy && reVersion.MatchString(source) {
		source = downlevel(source, stage)
	}

	var exts []string
	if legacy && stage == gputypes.ShaderStageFragment && caps.StandardDerivatives && reDerivative.MatchString(source) {
		exts = append(exts, ExtStandardDerivatives)
	}
	if legacy && caps.ShaderTextureLOD && reLodExtCall.MatchString(source) {
		exts = append(exts, ExtShaderTextureLOD)
	}
	if stage == gputypes.ShaderStageFragment && caps.FramebufferFetch && reLastFragData.MatchString(source) {
		exts = append(exts, ExtFramebufferFetchEXT)
	}
	return withExtensions(source, exts)
}

// downlevel rewrites GLSL ES 3.00 as GLSL ES 1.00.
func downlevel(source string, stage gputypes.ShaderStage) string {
	source = lowerUniformBlocks(source)

	cubes := make(map[string]bool)
	for _, m := range reCubeSampler.FindAllStringSubmatch(source, -1) {
		cubes[m[1]] = true
	}

	fragment := stage == gputypes.ShaderStageFragment
	fragOut := make(map[string]string)
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if reVersion.MatchString(trimmed) {
			out = append(out, "#version 100")
			continue
		}
		if m := rePrecision.FindStringSubmatch(trimmed); m != nil {
			out = append(out, precision(m[1], m[2], fragment)...)
			continue
		}

		m := reStageIO.FindStringSubmatch(trimmed)
		if m == nil {
			if strings.HasPrefix(trimmed, "layout(") && strings.Contains(trimmed, "uniform ") {
				line = reLayoutPrefix.ReplaceAllString(trimmed, "")
			}
			if fragment {
				// highp is optional in ES 1.00 fragment shaders.
				line = reHighp.ReplaceAllString(line, "")
			}
			out = append(out, line)
			continue
		}
		dir, typ, name, array := m[2], m[3], m[4], m[5]
		switch {
		case stage == gputypes.ShaderStageVertex && dir == "in":
			out = append(out, "attribute "+typ+" "+name+array+";")
		case dir == "in" || stage == gputypes.ShaderStageVertex:
			out = append(out, "varying "+typ+" "+name+array+";")
		default:
			// Fragment outputs become built-ins.
			loc := "0"
			if l := reLocation.FindStringSubmatch(m[1]); l != nil {
				loc = l[1]
			}
			if loc == "0" && array == "" {
				fragOut[name] = "gl_FragColor"
			} else {
				fragOut[name] = "gl_FragData[" + loc + "]"
			}
		}
	}
	source = strings.Join(out, "\n")

	for name, builtin := range fragOut {
		source = regexp.MustCompile(`\b`+regexp.QuoteMeta(name)+`\b`).ReplaceAllString(source, builtin)
	}

	return reTextureCall.ReplaceAllStringFunc(source, func(call string) string {
		m := reTextureCall.FindStringSubmatch(call)
		kind := "2D"
		if cubes[m[2]] {
			kind = "Cube"
		}
		if m[1] == "Lod" {
			return "texture" + kind + "LodEXT(" + m[2]
		}
		return "texture" + kind + "(" + m[2]
	})
}

// lowerUniformBlocks replaces uniform blocks with plain uniforms. A named
// block instance becomes a uniform of a struct named after the block.
func lowerUniformBlocks(source string) string {
	return reUniformBlock.ReplaceAllStringFunc(source, func(block string) string {
		m := reUniformBlock.FindStringSubmatch(block)
		var members []string
		for _, decl := range reBlockMember.FindAllString(m[2], -1) {
			if decl = strings.TrimSpace(decl); decl != ";" {
				members = append(members, decl)
			}
		}
		if m[3] != "" {
			return "struct " + m[1] + " { " + strings.Join(members, " ") + " };\nuniform " + m[1] + " " + m[3] + ";"
		}
		for i, decl := range members {
			members[i] = "uniform " + decl
		}
		return strings.Join(members, "\n")
	})
}

// precision returns the ES 1.00 form of a default precision statement.
// Sampler defaults are dropped, and a fragment highp default falls back to
// mediump on devices without GL_FRAGMENT_PRECISION_HIGH.
func precision(qualifier, typ string, fragment bool) []string {
	switch {
	case strings.HasPrefix(typ, "sampler"):
		return nil
	case fragment && qualifier == "highp":
		return []string{
			"#ifdef GL_FRAGMENT_PRECISION_HIGH",
			"precision highp " + typ + ";",
			"#else",
			"precision mediump " + typ + ";",
			"#endif",
		}
	default:
		return []string{"precision " + qualifier + " " + typ + ";"}
	}
}

// withExtensions inserts #extension directives after the #version line.
func withExtensions(source string, exts []string) string {
	if len(exts) == 0 {
		return source
	}
	var b strings.Builder
	for _, e := range exts {
		b.WriteString("#extension " + e + " : enable\n")
	}

	head, rest, found := strings.Cut(source, "\n")
	if !found || !strings.HasPrefix(strings.TrimSpace(head), "#version") {
		return b.String() + source
	}
	return head + "\n" + b.String() + rest
}
