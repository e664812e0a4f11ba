package verify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"cdsmatch/internal/config"
	"cdsmatch/internal/model"
)

func row(rowIndex int, tableID, fieldID string) model.MatchedRow {
	return model.MatchedRow{
		Field: model.InputField{RowIndex: rowIndex},
		Result: model.MatchResult{
			TableID:  tableID,
			FieldID:  fieldID,
			DataType: "CHAR",
			Match:    model.MatchCDS,
			Notes:    "85% - ok",
		},
	}
}

func TestApplyDisabledWritesNoMarkers(t *testing.T) {
	v := New(config.VerifyConfig{Enabled: false}, zap.NewNop().Sugar())

	rows := []model.MatchedRow{row(13, "I_SUPPLIER", "SUPPLIER"), row(14, "", "")}
	rows = v.Apply(rows)

	if rows[0].Result.Verify != "" {
		t.Fatalf("verify = %q, want untouched when disabled", rows[0].Result.Verify)
	}
	if rows[1].Result.Verify != "" {
		t.Fatalf("no-target row verify = %q, want no marker when disabled", rows[1].Result.Verify)
	}
}

func TestApplyConfirmsAndRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if r.Header.Get("x-csrf-token") != "Fetch" {
				t.Errorf("token fetch header = %q", r.Header.Get("x-csrf-token"))
			}
			w.Header().Set("x-csrf-token", "tok123")
			return
		}
		if got := r.Header.Get("x-csrf-token"); got != "tok123" {
			t.Errorf("post token = %q, want tok123", got)
		}
		var payload verifyPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(payload.ItemField) != 2 {
			t.Errorf("items = %d, want 2", len(payload.ItemField))
		}
		for i := range payload.ItemField {
			if payload.ItemField[i].ToEntity == "I_BAD" {
				payload.ItemField[i].ReturnCode = 4
				payload.ItemField[i].ReturnMessage = "unknown field"
			}
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	v := New(config.VerifyConfig{
		Enabled:          true,
		URL:              srv.URL,
		User:             "u",
		Password:         "p",
		RejectionMessage: "rejected by target system",
	}, zap.NewNop().Sugar())

	rows := []model.MatchedRow{
		row(13, "I_SUPPLIER", "SUPPLIER"),
		row(14, "I_BAD", "NOPE"),
		row(15, "", ""),
	}
	rows = v.Apply(rows)

	if rows[0].Result.Verify != model.VerifyConfirmed {
		t.Fatalf("confirmed row verify = %q", rows[0].Result.Verify)
	}
	bad := rows[1].Result
	if bad.TableID != "" || bad.FieldID != "" || bad.DataType != "" || bad.Match != "" {
		t.Fatalf("rejected row not cleared: %+v", bad)
	}
	if bad.Notes != "rejected by target system" {
		t.Fatalf("rejected notes = %q", bad.Notes)
	}
	if bad.Verify != "" {
		t.Fatalf("rejected verify = %q, want empty so the row is retried", bad.Verify)
	}
	if rows[2].Result.Verify != model.VerifyNotApplicable {
		t.Fatalf("no-target verify = %q", rows[2].Result.Verify)
	}
}

func TestApplyTransportFailureLeavesRowsUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	v := New(config.VerifyConfig{Enabled: true, URL: srv.URL}, zap.NewNop().Sugar())

	rows := v.Apply([]model.MatchedRow{row(13, "I_SUPPLIER", "SUPPLIER")})
	if rows[0].Result.TableID != "I_SUPPLIER" || rows[0].Result.Verify != "" {
		t.Fatalf("row should be untouched on transport failure: %+v", rows[0].Result)
	}
}
