package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title  string `json:"title" validate:"required,max=10"`
	ISBN   string `json:"isbn" validate:"omitempty,isbn"`
	Status string `json:"status" validate:"omitempty,book_status"`
	Rating *int   `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

func TestValidateStruct(t *testing.T) {
	five := 5
	assert.Empty(t, ValidateStruct(sampleRequest{Title: "Dune", ISBN: "978-0441172719", Status: "reading", Rating: &five}))

	six := 6
	details := ValidateStruct(sampleRequest{ISBN: "123", Status: "finished", Rating: &six})
	require.Len(t, details, 4)

	byField := map[string]string{}
	for _, d := range details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "title is required", byField["title"])
	assert.Contains(t, byField["isbn"], "valid ISBN")
	assert.Contains(t, byField["status"], "tbr, reading, read, wishlist")
	assert.Contains(t, byField["rating"], "out of range")
}

func TestValidISBN(t *testing.T) {
	tests := []struct {
		isbn string
		want bool
	}{
		{"9780441172719", true},
		{"978-0-441-17271-9", true},
		{"044117271X", true},
		{"MANUAL-1700000000", true},
		{"12345", false},
		{"97804411727AB", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.isbn, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidISBN(tt.isbn))
		})
	}
}
