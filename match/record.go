package match

// Side labels the role of an image within a card pair.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// NameCandidate is the output of one extraction method: a normalized name
// with the method that produced it and its method-local confidence on a
// 0-100 scale.
type NameCandidate struct {
	Text       string
	Method     string
	Confidence float64
}

// CardRecord is the unit of output for one matched card. Front and Back
// hold image file paths; empty string means the slot is unoccupied. A
// record without a front image is never emitted.
type CardRecord struct {
	Identifier string
	Front      string
	Back       string
	Name       string
	Confidence float64

	// nameFrom remembers which side supplied the current name so
	// cross-validation can try the other one.
	nameFrom Side
}

// HasBack reports whether the back slot is occupied.
func (r *CardRecord) HasBack() bool { return r.Back != "" }

// HasName reports whether a holder name was extracted.
func (r *CardRecord) HasName() bool { return r.Name != "" }
