package screen

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/validator"
)

func validInquiry() domain.Inquiry {
	return domain.Inquiry{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Message: "Is this available in blue?",
	}
}

func TestDetail_ViewAndToggle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	d := NewDetail(rated(4, 30, 3.5), store, newTestLogger())

	assert.False(t, d.View().InWishList)

	assert.True(t, d.ToggleWishList(ctx))
	assert.True(t, d.View().InWishList)
	assert.Equal(t, int64(4), d.View().ID)

	assert.False(t, d.ToggleWishList(ctx))
	assert.False(t, store.Contains(4))
}

func TestDetail_SubmitInquiry_Success(t *testing.T) {
	d := NewDetail(rated(4, 30, 3.5), newTestStore(), newTestLogger())

	conf, err := d.SubmitInquiry(context.Background(), validInquiry())

	require.NoError(t, err)
	assert.Equal(t, "Inquiry Sent", conf.Title)
	assert.Equal(t, "Thank you for your inquiry. We'll get back to you soon!", conf.Message)
}

func TestSubmitInquiry_LogsMessageLengthInCharacters(t *testing.T) {
	var buf bytes.Buffer
	in := validInquiry()
	in.Message = "Gibt es das Kleid auch in Grün? 👗"

	_, err := SubmitInquiry(context.Background(), 4, in, slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "inquiry accepted", line["msg"])
	assert.Equal(t, float64(33), line["message_length"])
}

func TestSubmitInquiry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Inquiry)
		field   string
		message string
	}{
		{"name required", func(in *domain.Inquiry) { in.Name = "" }, "name", "is required"},
		{"name too short", func(in *domain.Inquiry) { in.Name = "A" }, "name", "must be at least 2 characters"},
		{"name too long", func(in *domain.Inquiry) { in.Name = strings.Repeat("a", 51) }, "name", "must be at most 50 characters"},
		{"email required", func(in *domain.Inquiry) { in.Email = "" }, "email", "is required"},
		{"email malformed", func(in *domain.Inquiry) { in.Email = "not-an-email" }, "email", "must be a valid email address"},
		{"message too short", func(in *domain.Inquiry) { in.Message = "Hi there" }, "message", "must be at least 10 characters"},
		{"message too long", func(in *domain.Inquiry) { in.Message = strings.Repeat("m", 501) }, "message", "must be at most 500 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInquiry()
			tt.mutate(&in)

			conf, err := SubmitInquiry(context.Background(), 1, in, newTestLogger())

			var ve *validator.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Fields()[tt.field])
			assert.Len(t, ve.Fields(), 1)
			assert.Zero(t, conf)
		})
	}
}

func TestSubmitInquiry_Boundaries(t *testing.T) {
	in := domain.Inquiry{
		Name:    "Al",
		Email:   "a@b.co",
		Message: strings.Repeat("x", 10),
	}
	_, err := SubmitInquiry(context.Background(), 1, in, newTestLogger())
	require.NoError(t, err)

	in.Name = strings.Repeat("n", 50)
	in.Message = strings.Repeat("x", 500)
	_, err = SubmitInquiry(context.Background(), 1, in, newTestLogger())
	require.NoError(t, err)
}
