package compile

// NoVertexFactory labels shaders compiled without a vertex factory.
const NoVertexFactory = "No Vertex Factory"

var vertexFactoryNames = map[string]string{
	"FLocalVertexFactory":                          "Default Usage",
	"TGPUSkinVertexFactoryfalse":                   "Used with Skeletal Mesh",
	"TGPUSkinVertexFactorytrue":                    "Used with Skeletal Mesh",
	"FLandscapeVertexFactoryMobile":                "Used with Landscape",
	"FLandscapeVertexFactory":                      "Used with Landscape",
	"FLandscapeXYOffsetVertexFactory":              "Used with Landscape",
	"FParticleSpriteVertexFactory":                 "Used with Particle Sprites",
	"FGPUSpriteVertexFactory":                      "Used with Particle Sprites",
	"FParticleBeamTrailVertexFactory":              "Used with Beam Trails",
	"FMeshParticleVertexFactory":                   "Used with Mesh Particles",
	"FMeshParticleVertexFactoryEmulatedInstancing": "Used with Mesh Particles",
	"TGPUSkinMorphVertexFactoryfalse":              "Used with Morph Targets",
	"TGPUSkinMorphVertexFactorytrue":               "Used with Skeletal Mesh and Morph Targets",
	"FSplineMeshVertexFactory":                     "Used with Spline Meshes",
	"FInstancedStaticMeshVertexFactory":            "Used with Instanced Static Meshes",
	"FEmulatedInstancedStaticMeshVertexFactory":    "Used with Instanced Static Meshes",
	"TGPUSkinAPEXClothVertexFactoryfalse":          "Used with Skeletal Mesh and Clothing",
	"TGPUSkinAPEXClothVertexFactorytrue":           "Used with Skeletal Mesh and Clothing",
}

// VertexFactoryName returns the human-readable name of a vertex factory
// type. Unknown names are returned unchanged.
func VertexFactoryName(typeName string) string {
	if typeName == "" {
		return NoVertexFactory
	}
	if pretty, ok := vertexFactoryNames[typeName]; ok {
		return pretty
	}
	return typeName
}
