package notes

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantClean string
		wantTags  []string
	}{
		{
			name:      "text with two tags",
			input:     "Lunch with #client #urgent",
			wantClean: "Lunch with",
			wantTags:  []string{"client", "urgent"},
		},
		{
			name:      "empty input",
			input:     "",
			wantClean: "",
			wantTags:  nil,
		},
		{
			name:      "no tags",
			input:     "Plain note text",
			wantClean: "Plain note text",
			wantTags:  nil,
		},
		{
			name:      "tag in the middle collapses whitespace",
			input:     "Call #work about invoice",
			wantClean: "Call about invoice",
			wantTags:  []string{"work"},
		},
		{
			name:      "duplicate tags deduplicated",
			input:     "#focus deep work #focus",
			wantClean: "deep work",
			wantTags:  []string{"focus"},
		},
		{
			name:      "only tags",
			input:     "#a #b #c",
			wantClean: "",
			wantTags:  []string{"a", "b", "c"},
		},
		{
			name:      "bare hash is not a tag",
			input:     "issue # 42",
			wantClean: "issue # 42",
			wantTags:  nil,
		},
		{
			name:      "underscore and digits",
			input:     "review #sprint_12 notes",
			wantClean: "review notes",
			wantTags:  []string{"sprint_12"},
		},
		{
			name:      "unicode tag",
			input:     "meeting #café",
			wantClean: "meeting",
			wantTags:  []string{"café"},
		},
		{
			name:      "punctuation terminates tag",
			input:     "done #done.",
			wantClean: "done .",
			wantTags:  []string{"done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clean, tags := Extract(tt.input)

			if clean != tt.wantClean {
				t.Errorf("Expected clean text %q, got %q", tt.wantClean, clean)
			}
			if !reflect.DeepEqual(tags, tt.wantTags) {
				t.Errorf("Expected tags %v, got %v", tt.wantTags, tags)
			}
		})
	}
}

func TestExtract_IdempotentOnCleanText(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Lunch with #client #urgent",
		"#a#b mixed #c",
		"  spaced   out #tag  text  ",
	}

	for _, input := range inputs {
		clean, _ := Extract(input)

		again, tags := Extract(clean)
		if again != clean {
			t.Errorf("Expected second pass to leave %q unchanged, got %q", clean, again)
		}
		if len(tags) != 0 {
			t.Errorf("Expected no tags on second pass of %q, got %v", clean, tags)
		}
	}
}
