package backend

import "unsafe"

// C layouts from compiler_manager.h and malioc_api.h. Field order and
// widths must match the native headers; Go's alignment rules produce the
// same padding as the C ABI for these structs.

// cVersion mirrors malicm_version.
type cVersion struct {
	major uint32
	minor uint32
	patch uint32
}

// cKeyValuePairs mirrors malioc_key_value_pairs.
type cKeyValuePairs struct {
	numberOfEntries uint32
	list            unsafe.Pointer // char**
}

// cOutputs mirrors malioc_outputs.
type cOutputs struct {
	numberOfFlexibleOutputs uint32
	flexibleOutputs         unsafe.Pointer // malioc_key_value_pairs*
	binaryDataSize          uint32
	binaryData              unsafe.Pointer
	numberOfErrors          uint32
	errors                  unsafe.Pointer // char**
	numberOfWarnings        uint32
	warnings                unsafe.Pointer // char**
}

// goString copies a NUL-terminated C string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// goStrings copies an array of n C strings.
func goStrings(list unsafe.Pointer, n uint32) []string {
	if list == nil || n == 0 {
		return nil
	}
	ptrs := unsafe.Slice((**byte)(list), n)
	out := make([]string, n)
	for i, p := range ptrs {
		out[i] = goString(p)
	}
	return out
}

// cString returns a NUL-terminated copy of s, or nil for "" so optional
// filter arguments reach the library as NULL.
func cString(s string) *byte {
	if s == "" {
		return nil
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// copyOutputs converts backend-owned outputs into Go values. The caller
// still owns o and must release it through the library.
func copyOutputs(o *cOutputs) Outputs {
	var out Outputs

	if o.numberOfFlexibleOutputs > 0 && o.flexibleOutputs != nil {
		blocks := unsafe.Slice((*cKeyValuePairs)(o.flexibleOutputs), o.numberOfFlexibleOutputs)
		out.Flexible = make([]FlexibleOutput, len(blocks))
		for i, b := range blocks {
			entries := goStrings(b.list, b.numberOfEntries)
			// Keys have even indexes, values odd. A trailing key without a
			// value is dropped.
			block := make(FlexibleOutput, 0, len(entries)/2)
			for j := 0; j+1 < len(entries); j += 2 {
				block = append(block, KeyValue{Key: entries[j], Value: entries[j+1]})
			}
			out.Flexible[i] = block
		}
	}

	if o.binaryDataSize > 0 && o.binaryData != nil {
		out.Binary = append([]byte(nil), unsafe.Slice((*byte)(o.binaryData), o.binaryDataSize)...)
	}

	out.Errors = goStrings(o.errors, o.numberOfErrors)
	out.Warnings = goStrings(o.warnings, o.numberOfWarnings)
	return out
}
