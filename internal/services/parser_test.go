package services

import (
	"errors"
	"testing"
)

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: `{"name":"go"}`, want: "go"},
		{name: "fenced", in: "```json\n{\"name\":\"fenced\"}\n```", want: "fenced"},
		{name: "surrounded by prose", in: "Sure! Here it is: {\"name\":\"prose\"} Hope it helps.", want: "prose"},
		{name: "no json", in: "I cannot answer that.", wantErr: ErrNoJSON},
		{name: "empty", in: "   ", wantErr: ErrNoJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := parseJSONResponse(tt.in, &got)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.Name)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		`noise [{"a":1},{"a":2}] noise`: `[{"a":1},{"a":2}]`,
		`noise {"list":[1,2]} noise`:    `{"list":[1,2]}`,
		`["one","two"]`:                 `["one","two"]`,
		`} nothing {`:                   "",
	}
	for in, want := range tests {
		if got := extractJSON(in); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}
