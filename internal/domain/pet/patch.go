package pet

// Patch is a partial update. A nil field is absent and leaves the stored
// value alone; a non-nil field is applied even when it holds a zero value.
type Patch struct {
	Name      *string
	Species   *string
	Age       *int
	Weight    *float64
	Body      *string
	Neutering *bool
}

// IsEmpty reports whether no field is present.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Species == nil && p.Age == nil &&
		p.Weight == nil && p.Body == nil && p.Neutering == nil
}
