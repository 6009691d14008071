package fields

import (
	"strconv"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pattern"
)

var materialCount = pattern.MustCompile(`^(?<count>\d+) *(?<kind>.+)`, pattern.None)

var materialKinds = []struct {
	re   *pattern.Regex
	name string
}{
	{pattern.MustCompile(`^(?:Tab\.|Tabellen?|Tafeln?)`, pattern.None), "table"},
	{pattern.MustCompile(`^Karten?`, pattern.None), "map"},
	{pattern.MustCompile(`^Falt(?:karten?|plan|pläne)`, pattern.None), "fold-up map"},
	{pattern.MustCompile(`^Falttabellen?`, pattern.None), "fold-up table"},
	{pattern.MustCompile(`^Abb\.`, pattern.None), "figure"},
}

// ParseMaterials parses annotations such as "4 Karten" or "70 Abb.".
// Unrecognised kinds keep their printed form as Type.
func ParseMaterials(raw []string) []model.Material {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.Material, 0, len(raw))
	for _, r := range raw {
		out = append(out, ParseMaterial(r))
	}
	return out
}

// ParseMaterial parses one material annotation.
func ParseMaterial(raw string) model.Material {
	m := materialCount.Find(raw)
	if m == nil {
		return model.Material{Raw: raw}
	}
	count, _ := strconv.Atoi(m.Group("count").Text)
	kind := m.Group("kind").Text
	name := kind
	for _, k := range materialKinds {
		if k.re.MatchString(kind) {
			name = k.name
			break
		}
	}
	return model.Material{Count: count, Type: name, Raw: raw}
}
