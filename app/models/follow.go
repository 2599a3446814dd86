package models

import "time"

// Validate rejects self-follows and missing ids.
func (f *Follow) Validate() error {
	return validate.Struct(f)
}

// BeforeCreate stamps the creation time.
func (f *Follow) BeforeCreate() {
	if f.Created.IsZero() {
		f.Created = time.Now()
	}
}
