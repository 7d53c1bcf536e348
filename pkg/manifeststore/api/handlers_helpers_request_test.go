package api

import (
	"errors"
	"testing"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

func TestIsFormContent(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/x-www-form-urlencoded", true},
		{"application/x-www-form-urlencoded; charset=UTF-8", true},
		{"Application/X-WWW-Form-Urlencoded", true},
		{"application/json", false},
		{"multipart/form-data; boundary=x", false},
		{"", false},
		{";;;", false},
	}

	for _, tt := range tests {
		if got := isFormContent(tt.contentType); got != tt.want {
			t.Errorf("isFormContent(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestFormToJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"single values", "title=A&label=B", `{"label":"B","title":"A"}`, false},
		{"repeated key", "tag=x&tag=y", `{"tag":["x","y"]}`, false},
		{"escaped", "title=hello+world&q=%7B%7D", `{"q":"{}","title":"hello world"}`, false},
		{"empty", "", `{}`, false},
		{"bad escape", "title=%zz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formToJSON([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("formToJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, apperrors.ErrInvalidRequest) {
					t.Errorf("formToJSON() error should wrap ErrInvalidRequest, got %v", err)
				}
				return
			}
			if string(got) != tt.want {
				t.Errorf("formToJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}
