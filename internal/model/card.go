package model

import "fmt"

// CardID uniquely identifies a card within a session
type CardID string

// Content keys the server inspects. Everything else in Card.Content is opaque.
const (
	ContentCategory = "category"
	ContentTitle    = "title"
	ContentBody     = "body"
	ContentText     = "content" // body text as sent by older clients
)

// Card is a positioned content item on the shared board
type Card struct {
	ID      CardID
	X       float64
	Y       float64
	Content Attributes
}

// Attributes renders the card as an attribute tree, the shape patches are merged into
func (c *Card) Attributes() Attributes {
	content := c.Content.Clone()
	if content == nil {
		content = Attributes{}
	}
	return Attributes{
		"id":      string(c.ID),
		"x":       c.X,
		"y":       c.Y,
		"content": content,
	}
}

// CardFromAttributes builds a card from a merged attribute tree.
// Position must be numeric and the inspected content keys must be strings.
// Unknown top-level keys are ignored.
func CardFromAttributes(id CardID, attrs Attributes) (*Card, error) {
	card := &Card{ID: id, Content: Attributes{}}

	if v, present := attrs["x"]; present && v != nil {
		x, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: x must be a number", ErrInvalidCard)
		}
		card.X = x
	}
	if v, present := attrs["y"]; present && v != nil {
		y, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: y must be a number", ErrInvalidCard)
		}
		card.Y = y
	}

	if v, present := attrs["content"]; present && v != nil {
		content, ok := AsAttributes(v)
		if !ok {
			return nil, fmt.Errorf("%w: content must be an object", ErrInvalidCard)
		}
		for _, key := range []string{ContentCategory, ContentTitle, ContentBody, ContentText} {
			if val, present := content[key]; present && val != nil {
				if _, ok := val.(string); !ok {
					return nil, fmt.Errorf("%w: content.%s must be a string", ErrInvalidCard, key)
				}
			}
		}
		card.Content = content.Clone()
	}

	return card, nil
}

// Clone returns a deep copy of the card
func (c *Card) Clone() *Card {
	return &Card{
		ID:      c.ID,
		X:       c.X,
		Y:       c.Y,
		Content: c.Content.Clone(),
	}
}
