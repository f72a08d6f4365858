package scenario

import "testing"

func TestURLFromMetadataOrder(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want string
		ok   bool
	}{
		{
			name: "top level wins over nested",
			meta: map[string]any{
				"url":   "https://top.example.com/a",
				"asset": map[string]any{"url": "https://nested.example.com/a"},
			},
			want: "https://top.example.com/a",
			ok:   true,
		},
		{
			name: "field order within a scope",
			meta: map[string]any{"signedUrl": "https://c/3", "url": "https://c/2", "downloadUrl": "https://c/1"},
			want: "https://c/1",
			ok:   true,
		},
		{
			name: "container order",
			meta: map[string]any{
				"file":   map[string]any{"url": "https://file/a"},
				"result": map[string]any{"url": "https://result/a"},
				"data":   map[string]any{"url": "https://data/a"},
			},
			want: "https://data/a",
			ok:   true,
		},
		{
			name: "non-object container ignored",
			meta: map[string]any{"asset": "https://string/a", "result": map[string]any{"downloadUrl": "https://result/a"}},
			want: "https://result/a",
			ok:   true,
		},
		{
			name: "non http schemes rejected",
			meta: map[string]any{"url": "ftp://files/a", "data": map[string]any{"url": "/relative"}},
			ok:   false,
		},
		{
			name: "non string values rejected",
			meta: map[string]any{"url": 42, "asset": map[string]any{"downloadUrl": true}},
			ok:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := URLFromMetadata(tc.meta)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("URLFromMetadata = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestStrategiesAreIndependent(t *testing.T) {
	meta := map[string]any{"asset": map[string]any{"url": "https://cdn/y.png"}}
	if _, ok := TopLevel()(meta); ok {
		t.Fatal("top level strategy should not look into containers")
	}
	if got, ok := Nested("asset")(meta); !ok || got != "https://cdn/y.png" {
		t.Fatalf("nested strategy = (%q, %v)", got, ok)
	}
	if _, ok := Nested("data")(meta); ok {
		t.Fatal("nested strategy should only read its own key")
	}
}

func TestCandidateURLs(t *testing.T) {
	meta := map[string]any{
		"downloadUrl": "https://a/1",
		"url":         "https://a/1",
		"signedUrl":   "nope",
		"asset":       map[string]any{"url": "https://b/2"},
		"file":        map[string]any{"signedUrl": "https://c/3"},
	}
	got := CandidateURLs(meta)
	want := []string{"https://a/1", "https://b/2", "https://c/3"}
	if len(got) != len(want) {
		t.Fatalf("CandidateURLs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CandidateURLs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
