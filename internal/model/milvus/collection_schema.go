package milvus

import (
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"
)

// CollectionSchema represents the standard schema for law chunk collections in Milvus
// This schema is used for storing legal article chunks with their embeddings
type CollectionSchema struct {
	// Id is the stable chunk identifier (primary key)
	Id string `milvus:"id,varchar,256,primary_key"`

	// Text is the article chunk content
	Text string `milvus:"text,varchar,65535"`

	// Vector is the embedding vector of the chunk
	Vector []float32 `milvus:"vector,float_vector,1024"`

	// DocumentId is the ID of the law document this chunk belongs to
	DocumentId string `milvus:"document_id,varchar,256"`

	// Metadata stores document title, article number, chunk index and
	// fingerprint as JSON
	Metadata string `milvus:"metadata,json"`
}

// GetFields returns the Milvus field definitions for the law chunk collection
func (CollectionSchema) GetFields(dim int) []*entity.Field {
	return []*entity.Field{
		{
			Name:        "id",
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "256"},
			PrimaryKey:  true,
			AutoID:      false,
			Description: "Stable chunk ID (primary key)",
		},
		{
			Name:        "text",
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "65535"},
			Description: "Article chunk content",
		},
		{
			Name:        "vector",
			DataType:    entity.FieldTypeFloatVector,
			TypeParams:  map[string]string{"dim": fmt.Sprintf("%d", dim)},
			Description: "Article chunk embedding vector",
		},
		{
			Name:        "document_id",
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "256"},
			Description: "Law document ID (foreign key)",
		},
		{
			Name:        "metadata",
			DataType:    entity.FieldTypeJSON,
			Description: "Additional metadata (JSON)",
		},
	}
}

// GetStandardCollectionFields is a helper function to get standard collection fields
func GetStandardCollectionFields(dim int) []*entity.Field {
	return CollectionSchema{}.GetFields(dim)
}
