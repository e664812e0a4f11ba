// Package verify checks proposed (view, field) targets against a downstream
// OData existence service. Rejected targets are cleared in place so the
// written sheet never carries a field the target system does not know.
package verify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cdsmatch/internal/config"
	"cdsmatch/internal/model"
)

// Verifier posts the merged result list to the existence-check endpoint.
// The zero value with Enabled false passes results through untouched.
type Verifier struct {
	cfg        config.VerifyConfig
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// New creates a verifier from config.
func New(cfg config.VerifyConfig, log *zap.SugaredLogger) *Verifier {
	return &Verifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

type itemField struct {
	TabFdPos      string `json:"TabFdPos"`
	ToEntity      string `json:"ToEntity"`
	ToField       string `json:"ToField"`
	ReturnCode    int    `json:"ReturnCode,omitempty"`
	ReturnMessage string `json:"ReturnMessage,omitempty"`
}

type verifyPayload struct {
	ItemField []itemField `json:"_ItemField"`
}

// Apply mutates rows in place. Rows with a target are confirmed ("√") or
// cleared with the configured rejection message; rows without a target are
// marked not applicable. When the check is disabled no markers are written
// at all. A transport failure leaves all rows untouched: verification
// degrades, matching output survives.
func (v *Verifier) Apply(rows []model.MatchedRow) []model.MatchedRow {
	if !v.cfg.Enabled {
		return rows
	}
	for i := range rows {
		if rows[i].Result.TableID == "" {
			rows[i].Result.Verify = model.VerifyNotApplicable
		}
	}

	var items []itemField
	for i := range rows {
		if rows[i].Result.TableID == "" {
			continue
		}
		items = append(items, itemField{
			TabFdPos: strconv.Itoa(i + 1),
			ToEntity: rows[i].Result.TableID,
			ToField:  rows[i].Result.FieldID,
		})
	}
	if len(items) == 0 {
		return rows
	}

	checked, err := v.post(items)
	if err != nil {
		v.log.Warnw("existence check failed, leaving results unverified", "error", err)
		return rows
	}

	type pair struct{ entity, field string }
	byTarget := make(map[pair]itemField, len(checked))
	for _, item := range checked {
		byTarget[pair{item.ToEntity, item.ToField}] = item
	}

	for i := range rows {
		r := &rows[i].Result
		if r.TableID == "" {
			continue
		}
		item, ok := byTarget[pair{r.TableID, r.FieldID}]
		if !ok {
			r.Verify = model.VerifyNotApplicable
			continue
		}
		if item.ReturnCode == 0 {
			r.Verify = model.VerifyConfirmed
			continue
		}
		// Rejected: clear the proposed target so the row is picked up
		// again on the next run.
		v.log.Infow("target rejected by existence check",
			"table", r.TableID, "field", r.FieldID, "message", item.ReturnMessage)
		r.TableID = ""
		r.FieldID = ""
		r.DataType = ""
		r.LengthTotal = ""
		r.LengthDec = ""
		r.SampleValue = ""
		r.Match = ""
		r.Notes = v.cfg.RejectionMessage
		r.Verify = ""
	}
	return rows
}

// post performs the CSRF-token fetch then the existence-check POST.
func (v *Verifier) post(items []itemField) ([]itemField, error) {
	tokenReq, err := http.NewRequest(http.MethodGet, v.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	tokenReq.SetBasicAuth(v.cfg.User, v.cfg.Password)
	tokenReq.Header.Set("Accept", "application/json")
	tokenReq.Header.Set("x-csrf-token", "Fetch")

	tokenResp, err := v.httpClient.Do(tokenReq)
	if err != nil {
		return nil, fmt.Errorf("csrf token fetch: %w", err)
	}
	io.Copy(io.Discard, tokenResp.Body)
	tokenResp.Body.Close()
	token := tokenResp.Header.Get("x-csrf-token")

	body, err := json.Marshal(verifyPayload{ItemField: items})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, v.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(v.cfg.User, v.cfg.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-csrf-token", token)
	for _, c := range tokenResp.Cookies() {
		req.AddCookie(c)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("existence check post: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("existence check returned status %d: %s", resp.StatusCode, respBody)
	}

	var result verifyPayload
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse existence check response: %w", err)
	}
	return result.ItemField, nil
}
