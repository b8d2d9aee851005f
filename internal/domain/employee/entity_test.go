package employee

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_TimeOrderedID(t *testing.T) {
	uploaded := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	doc, err := NewDocument("contract.pdf", "employees/e1/contract.pdf", DocumentTypeContract, uploaded)
	require.NoError(t, err)

	id, err := uuid.Parse(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, "contract.pdf", doc.Name)
	assert.Equal(t, DocumentTypeContract, doc.Type)
	assert.Equal(t, uploaded, doc.UploadDate)

	next, err := NewDocument("id.png", "employees/e1/id.png", DocumentTypeID, uploaded)
	require.NoError(t, err)
	assert.NotEqual(t, doc.ID, next.ID)
}
