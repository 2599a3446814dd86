package models

// Validate checks the group fields.
func (g *Group) Validate() error {
	return validate.Struct(g)
}

// String returns the group title.
func (g *Group) String() string {
	return g.Title
}
