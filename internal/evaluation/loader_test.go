package evaluation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGoldenQueries_ValidFile(t *testing.T) {
	content := `[
		{"id": "q1", "query": "BMW under 20000", "intent": "filter", "expected_vehicles": ["veh-1", "veh-2"], "expected_strategy": "exact_only", "difficulty": "easy"},
		{"id": "q2", "query": "reliable family estate", "intent": "browse", "expected_vehicles": ["veh-3"], "expected_strategy": "semantic_only", "difficulty": "medium"}
	]`
	path := writeTempFile(t, content)

	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}
	if queries[0].ID != "q1" {
		t.Errorf("expected id q1, got %s", queries[0].ID)
	}
	if queries[0].Intent != IntentFilter {
		t.Errorf("expected intent filter, got %s", queries[0].Intent)
	}
	if len(queries[0].ExpectedVehicles) != 2 {
		t.Errorf("expected 2 expected vehicles, got %d", len(queries[0].ExpectedVehicles))
	}
	if queries[1].Query != "reliable family estate" {
		t.Errorf("expected query 'reliable family estate', got %s", queries[1].Query)
	}
}

func TestLoadGoldenQueries_InvalidFile(t *testing.T) {
	_, err := LoadGoldenQueries("/nonexistent/path.json")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadGoldenQueries_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `not valid json`)
	_, err := LoadGoldenQueries(path)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadGoldenQueries_EmptyArray(t *testing.T) {
	path := writeTempFile(t, `[]`)
	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 0 {
		t.Errorf("expected 0 queries, got %d", len(queries))
	}
}

func TestGoldenQuery_IntentValidation(t *testing.T) {
	tests := []struct {
		intent Intent
		valid  bool
	}{
		{IntentBrowse, true},
		{IntentFilter, true},
		{IntentRefine, true},
		{IntentLookup, true},
		{IntentUnknown, true},
		{Intent("condition"), false},
		{Intent(""), false},
	}
	for _, tt := range tests {
		got := tt.intent.IsValid()
		if got != tt.valid {
			t.Errorf("Intent(%q).IsValid() = %v, want %v", tt.intent, got, tt.valid)
		}
	}
}

func TestValidateGoldenQueries_MissingID(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "", Query: "test", Intent: IntentFilter, Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for missing ID")
	}
}

func TestValidateGoldenQueries_MissingQuery(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "", Intent: IntentFilter, Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for missing query")
	}
}

func TestValidateGoldenQueries_InvalidIntent(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", Intent: Intent("bad"), Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for invalid intent")
	}
}

func TestValidateGoldenQueries_InvalidDifficulty(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "test", Intent: IntentFilter, Difficulty: "impossible"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for invalid difficulty")
	}
}

func TestValidateGoldenQueries_DuplicateIDs(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "BMW under 20000", Intent: IntentFilter, Difficulty: "easy"},
		{ID: "q1", Query: "cheaper ones", Intent: IntentRefine, Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for duplicate IDs")
	}
}

func TestValidateGoldenQueries_Valid(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "BMW under 20000", Intent: IntentFilter, ExpectedVehicles: []string{"veh-1"}, Difficulty: "easy"},
		{ID: "q2", Query: "something sporty", Intent: IntentBrowse, ExpectedVehicles: []string{"veh-2"}, Difficulty: "medium"},
	}
	err := ValidateGoldenQueries(queries)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
