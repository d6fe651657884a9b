package shaderpack

import "sort"

// Format rewrites the manifest at path with every present declaration list
// sorted by source then output path. No validation is performed.
func Format(path string) error {
	m, err := Load(path)
	if err != nil {
		return err
	}

	m.Sort()
	return m.Save(path)
}

// Sort orders every present declaration list in place. Absent lists stay absent.
func (m *Manifest) Sort() {
	for _, c := range Categories {
		list := *m.list(c)
		if list == nil {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Less(list[j])
		})
	}
}
