package api

import (
	"testing"
)

func TestJSONCodec_EmptyBody(t *testing.T) {
	var req GetBalancesRequest
	if err := (JSONCodec{}).Unmarshal(nil, &req); err != nil {
		t.Fatalf("empty body should decode to the zero message: %v", err)
	}
}

func TestJSONCodec_FieldNames(t *testing.T) {
	data := []byte(`{"expense_id":"e1","split_id":"s1"}`)
	var req ClearSplitRequest
	if err := (JSONCodec{}).Unmarshal(data, &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if req.ExpenseID != "e1" || req.SplitID != "s1" {
		t.Errorf("Expected e1/s1, got %q/%q", req.ExpenseID, req.SplitID)
	}

	if err := (JSONCodec{}).Unmarshal([]byte(`{"expense_id":`), &req); err == nil {
		t.Error("Expected error for truncated body")
	}
}
