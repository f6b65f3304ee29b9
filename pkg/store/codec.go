package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/plantjournal/plantjournal/pkg/store/document"
)

// toDocument converts an entity struct to its stored form through the bson
// codec, so field names and identifier encoding follow the struct tags and
// the typed IDs' MarshalBSONValue.
func toDocument(v any) (document.Document, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc document.Document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// fromDocument decodes a stored document back into an entity struct.
func fromDocument(doc document.Document, v any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := bson.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
