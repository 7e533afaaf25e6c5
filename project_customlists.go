// SPDX-License-Identifier: Apache-2.0

package wobbly

// customListExists reports whether a custom list named name exists.
func (p *Project) customListExists(name string) bool {
	for _, cl := range p.CustomLists {
		if cl.Name == name {
			return true
		}
	}
	return false
}

// CustomListExists reports whether a custom list named name exists.
func (p *Project) CustomListExists(name string) bool { return p.customListExists(name) }

func (p *Project) findCustomListIndex(name string) int {
	for i, cl := range p.CustomLists {
		if cl.Name == name {
			return i
		}
	}
	return -1
}

// AddCustomList appends a new, empty custom list.
func (p *Project) AddCustomList(name, preset string, position PositionInFilterChain) error {
	if !isNameSafeForPython(name) {
		return &InvalidNameError{Name: name}
	}
	if p.customListExists(name) {
		return &NameInUseError{Name: name}
	}
	p.CustomLists = append(p.CustomLists, NewCustomList(name, preset, position))
	p.setModified(true)
	return nil
}

// RenameCustomList renames a custom list.
func (p *Project) RenameCustomList(oldName, newName string) error {
	i := p.findCustomListIndex(oldName)
	if i < 0 {
		return &NoSuchCustomListError{Name: oldName}
	}
	if !isNameSafeForPython(newName) {
		return &InvalidNameError{Name: newName}
	}
	if oldName != newName && p.customListExists(newName) {
		return &NameInUseError{Name: newName}
	}
	p.CustomLists[i].Name = newName
	p.setModified(true)
	return nil
}

// DeleteCustomList removes a custom list.
func (p *Project) DeleteCustomList(name string) error {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return &NoSuchCustomListError{Name: name}
	}
	p.CustomLists = append(p.CustomLists[:i], p.CustomLists[i+1:]...)
	p.setModified(true)
	return nil
}

// MoveCustomListUp swaps a custom list with the one before it in pipeline
// emission order.
func (p *Project) MoveCustomListUp(name string) error {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return &NoSuchCustomListError{Name: name}
	}
	if i == 0 {
		return nil
	}
	p.CustomLists[i-1], p.CustomLists[i] = p.CustomLists[i], p.CustomLists[i-1]
	p.setModified(true)
	return nil
}

// MoveCustomListDown swaps a custom list with the one after it in pipeline
// emission order.
func (p *Project) MoveCustomListDown(name string) error {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return &NoSuchCustomListError{Name: name}
	}
	if i == len(p.CustomLists)-1 {
		return nil
	}
	p.CustomLists[i+1], p.CustomLists[i] = p.CustomLists[i], p.CustomLists[i+1]
	p.setModified(true)
	return nil
}

// GetCustomListPreset returns the preset assigned to a custom list.
func (p *Project) GetCustomListPreset(name string) (string, error) {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return "", &NoSuchCustomListError{Name: name}
	}
	return p.CustomLists[i].Preset, nil
}

// SetCustomListPreset assigns the preset applied by a custom list.
func (p *Project) SetCustomListPreset(name, preset string) error {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return &NoSuchCustomListError{Name: name}
	}
	p.CustomLists[i].Preset = preset
	p.setModified(true)
	return nil
}

// GetCustomListPosition returns the pipeline position of a custom list.
func (p *Project) GetCustomListPosition(name string) (PositionInFilterChain, error) {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return 0, &NoSuchCustomListError{Name: name}
	}
	return p.CustomLists[i].Position, nil
}

// SetCustomListPosition changes the pipeline stage a custom list is applied
// at.
func (p *Project) SetCustomListPosition(name string, position PositionInFilterChain) error {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return &NoSuchCustomListError{Name: name}
	}
	p.CustomLists[i].Position = position
	p.setModified(true)
	return nil
}

// AddCustomListRange adds a frame range to a custom list, normalizing
// first/last order and rejecting overlap with an existing range in the same
// list.
func (p *Project) AddCustomListRange(name string, first, last int) error {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return &NoSuchCustomListError{Name: name}
	}
	r := FrameRange{First: first, Last: last}.Normalize()
	if r.First < 0 || r.Last >= p.numFramesSource {
		return &OutOfRangeError{What: "frame", Value: r.First, Min: 0, Max: p.numFramesSource}
	}
	if p.CustomLists[i].Ranges.Overlaps(r.First, r.Last) {
		return &OverlapError{First: r.First, Last: r.Last}
	}
	p.CustomLists[i].Ranges.Insert(r)
	p.setModified(true)
	return nil
}

// DeleteCustomListRange removes the range starting at first from a custom
// list.
func (p *Project) DeleteCustomListRange(name string, first int) error {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return &NoSuchCustomListError{Name: name}
	}
	if !p.CustomLists[i].Ranges.Delete(first) {
		return &NoSuchRangeError{Frame: first}
	}
	p.setModified(true)
	return nil
}

// FindCustomListRange returns the range of a custom list containing frame.
func (p *Project) FindCustomListRange(name string, frame int) (FrameRange, error) {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return FrameRange{}, &NoSuchCustomListError{Name: name}
	}
	r, ok := p.CustomLists[i].Ranges.FindContaining(frame)
	if !ok {
		return FrameRange{}, &NoSuchRangeError{Frame: frame}
	}
	return r, nil
}

// IsCustomListInUse reports whether a custom list has any ranges.
func (p *Project) IsCustomListInUse(name string) (bool, error) {
	i := p.findCustomListIndex(name)
	if i < 0 {
		return false, &NoSuchCustomListError{Name: name}
	}
	return p.CustomLists[i].Ranges.Len() > 0, nil
}
