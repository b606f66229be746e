package vcf

import "strings"

// VEPFormat describes the pipe-delimited layout of a VEP consequence INFO
// field (gnomAD "vep", Ensembl "CSQ").
type VEPFormat struct {
	Key    string
	fields map[string]int
}

// FindVEPFormat looks for the ##INFO header line describing key and returns
// its field layout. ok is false when the header does not describe the key.
func FindVEPFormat(header []string, key string) (VEPFormat, bool) {
	prefix := "##INFO=<ID=" + key + ","
	for _, line := range header {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		i := strings.Index(line, "Format: ")
		if i < 0 {
			return VEPFormat{Key: key}, false
		}
		layout := line[i+len("Format: "):]
		if end := strings.IndexByte(layout, '"'); end >= 0 {
			layout = layout[:end]
		}
		f := VEPFormat{Key: key, fields: make(map[string]int)}
		for idx, name := range strings.Split(layout, "|") {
			f.fields[strings.TrimSpace(name)] = idx
		}
		return f, true
	}
	return VEPFormat{Key: key}, false
}

// Index returns the position of the named field, or fallback when the
// layout is unknown or does not contain it.
func (f VEPFormat) Index(name string, fallback int) int {
	if idx, ok := f.fields[name]; ok {
		return idx
	}
	return fallback
}

// FirstEntryField returns field idx of the first transcript entry in the
// variant's VEP INFO value.
func FirstEntryField(v *Variant, key string, idx int) (string, bool) {
	raw, ok := v.InfoString(key)
	if !ok {
		return "", false
	}
	if comma := strings.IndexByte(raw, ','); comma >= 0 {
		raw = raw[:comma]
	}
	parts := strings.Split(raw, "|")
	if idx < 0 || idx >= len(parts) || parts[idx] == "" {
		return "", false
	}
	return parts[idx], true
}
