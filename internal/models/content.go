package models

// Content is the decoded payload of a message. The backend delivers payloads
// in several shapes; decoding happens once at the wire boundary, after which
// everything switches on the variant instead of probing field names.
type Content interface {
	isContent()
}

// PlainText is a payload that was already a string, or carried one under a
// plain-text field with no HTML alongside it.
type PlainText struct {
	Text string
}

// HTML is a payload carried as an HTML body. HTML wins over any plain-text
// field present in the same record.
type HTML struct {
	Body string
}

// Entities is a payload carried as a list of link entities.
type Entities struct {
	URLs []string
}

// Blocks is a payload carried as a list of rich content blocks.
type Blocks struct {
	Texts []string
}

// Unknown is a payload in no recognized shape. The raw value is kept so the
// normalizer can fall back to a deep string walk.
type Unknown struct {
	Raw any
}

func (PlainText) isContent() {}
func (HTML) isContent()      {}
func (Entities) isContent()  {}
func (Blocks) isContent()    {}
func (Unknown) isContent()   {}
