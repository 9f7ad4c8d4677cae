package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mbolis/survey-api/app"
	"github.com/mbolis/survey-api/config"
	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/model"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	*httptest.Server
	app app.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log.SetOutput(io.Discard)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{TokenSecret: "test-secret", TokenTTL: time.Minute, CORSOrigins: []string{"*"}}
	a := app.App{DB: db, BearerServer: httpx.NewBearerServer(db, cfg), Config: cfg}

	srv := httptest.NewServer(Wire(a))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, app: a}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("content-type", "application/json")
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out
}

func (ts *testServer) addUser(t *testing.T, name, password string, admin bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &model.User{Username: name, PasswordHash: hash, IsAdmin: admin}
	if err := database.InsertUser(context.Background(), ts.app.DB, u); err != nil {
		t.Fatal(err)
	}
	return u
}

func (ts *testServer) login(t *testing.T, name, password string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/login", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth(name, password)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.AccessToken == "" {
		t.Fatal("login returned no access token")
	}
	return body.AccessToken
}

// seed stores survey S: Q1 text, Q2 select {O1, O2}.
func (ts *testServer) seed(t *testing.T) *model.Survey {
	t.Helper()
	ctx := context.Background()
	s := &model.Survey{Title: "S", StartDate: model.NewDate(2024, 1, 1), EndDate: model.NewDate(2024, 2, 1)}
	if err := database.InsertSurvey(ctx, ts.app.DB, s); err != nil {
		t.Fatal(err)
	}
	q1 := model.Question{SurveyID: s.ID, Title: "Q1", Type: model.Text}
	if err := database.InsertQuestion(ctx, ts.app.DB, &q1, nil); err != nil {
		t.Fatal(err)
	}
	q2 := model.Question{SurveyID: s.ID, Title: "Q2", Type: model.Select}
	if err := database.InsertQuestion(ctx, ts.app.DB, &q2, []string{"O1", "O2"}); err != nil {
		t.Fatal(err)
	}
	s.Questions = []model.Question{q1, q2}
	return s
}

func TestSubmitAndReadBack(t *testing.T) {
	ts := newTestServer(t)
	s := ts.seed(t)
	q1, q2 := s.Questions[0], s.Questions[1]
	o1 := q2.Options[0]

	status, body := ts.do(t, http.MethodPost, "/api/submissions", "", map[string]any{
		"survey": s.ID,
		"data": []map[string]any{
			{"question": q1.ID, "text": "hello"},
			{"question": q2.ID, "selections": []int64{o1.ID}},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("submit status %d: %s", status, body)
	}
	var created struct {
		ID  int64  `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.URL != fmt.Sprintf("/api/submissions/%d", created.ID) {
		t.Errorf("url = %q", created.URL)
	}

	status, body = ts.do(t, http.MethodGet, created.URL, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get status %d: %s", status, body)
	}
	var report struct {
		Survey  int64  `json:"survey"`
		User    *int64 `json:"user"`
		Results []struct {
			Question struct {
				ID int64 `json:"id"`
			} `json:"question"`
			Answer struct {
				Text       *string `json:"text"`
				Selections []int64 `json:"selections"`
			} `json:"answer"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatal(err)
	}
	if report.Survey != s.ID || report.User != nil || len(report.Results) != 2 {
		t.Fatalf("report = %s", body)
	}
	if r := report.Results[0]; r.Question.ID != q1.ID || r.Answer.Text == nil || *r.Answer.Text != "hello" {
		t.Errorf("Q1 = %s", body)
	}
	if r := report.Results[1]; r.Question.ID != q2.ID || len(r.Answer.Selections) != 1 || r.Answer.Selections[0] != o1.ID {
		t.Errorf("Q2 = %s", body)
	}

	status, body = ts.do(t, http.MethodGet, "/api/submissions", "", nil)
	if status != http.StatusOK || !bytes.Contains(body, []byte(fmt.Sprintf(`"id":%d`, created.ID))) {
		t.Errorf("list status %d: %s", status, body)
	}
}

func TestSubmitRejected(t *testing.T) {
	ts := newTestServer(t)
	s := ts.seed(t)
	q2 := s.Questions[1]

	status, body := ts.do(t, http.MethodPost, "/api/submissions", "", map[string]any{
		"survey": s.ID,
		"data": []map[string]any{
			{"question": q2.ID, "selections": []int64{q2.Options[0].ID, q2.Options[1].ID}},
		},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status %d: %s", status, body)
	}
	var out struct {
		Errors []struct {
			Index    int    `json:"index"`
			Question int64  `json:"question"`
			Kind     string `json:"kind"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Errors) != 1 || out.Errors[0].Kind != "MultipleSelectionsForSingleSelect" || out.Errors[0].Question != q2.ID {
		t.Errorf("errors = %s", body)
	}

	var n int
	if err := ts.app.QueryRow(`SELECT count(*) FROM submission`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("%d submissions stored after a rejected request", n)
	}
}

func TestSubmitBadRequests(t *testing.T) {
	ts := newTestServer(t)
	s := ts.seed(t)
	user := int64(77)

	tests := []struct {
		name string
		body any
	}{
		{"missing data", map[string]any{"survey": s.ID}},
		{"unknown survey", map[string]any{"survey": s.ID + 10, "data": []any{}}},
		{"unknown user", map[string]any{"survey": s.ID, "user": user, "data": []any{}}},
		{"malformed", "not an object"},
	}
	for _, tt := range tests {
		status, body := ts.do(t, http.MethodPost, "/api/submissions", "", tt.body)
		if status != http.StatusBadRequest {
			t.Errorf("%s: status %d: %s", tt.name, status, body)
		}
	}
}

func TestSubmitEntryWithoutQuestion(t *testing.T) {
	ts := newTestServer(t)
	s := ts.seed(t)

	status, body := ts.do(t, http.MethodPost, "/api/submissions", "", map[string]any{
		"survey": s.ID,
		"data":   []any{map[string]any{"text": "x"}},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status %d: %s", status, body)
	}
	var out struct {
		Errors []struct {
			Index    int    `json:"index"`
			Question int64  `json:"question"`
			Kind     string `json:"kind"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Errors) != 1 || out.Errors[0].Kind != "QuestionNotInSurvey" || out.Errors[0].Question != 0 {
		t.Errorf("errors = %s", body)
	}
}

func TestSubmitBodyTooLarge(t *testing.T) {
	ts := newTestServer(t)
	s := ts.seed(t)

	status, body := ts.do(t, http.MethodPost, "/api/submissions", "", map[string]any{
		"survey": s.ID,
		"data":   []any{map[string]any{"question": s.Questions[0].ID, "text": strings.Repeat("x", maxBodyBytes)}},
	})
	if status != http.StatusRequestEntityTooLarge {
		t.Errorf("status %d: %.100s", status, body)
	}
}

func TestGetMissingSubmission(t *testing.T) {
	ts := newTestServer(t)
	if status, _ := ts.do(t, http.MethodGet, "/api/submissions/12", "", nil); status != http.StatusNotFound {
		t.Errorf("status %d, want 404", status)
	}
}

func TestAdminRequiresAdminToken(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "respondent", "pw", false)

	if status, _ := ts.do(t, http.MethodGet, "/api/admin/questions", "", nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous: status %d, want 401", status)
	}

	token := ts.login(t, "respondent", "pw")
	if status, _ := ts.do(t, http.MethodGet, "/api/admin/questions", token, nil); status != http.StatusForbidden {
		t.Errorf("non admin: status %d, want 403", status)
	}
}

func TestAdminCRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.addUser(t, "admin", "pw", true)
	token := ts.login(t, "admin", "pw")

	status, body := ts.do(t, http.MethodPost, "/api/admin/surveys", token, map[string]any{
		"title":      "Feedback",
		"start_date": "2024-03-01",
		"end_date":   "2024-03-31",
	})
	if status != http.StatusCreated {
		t.Fatalf("create survey status %d: %s", status, body)
	}
	var survey model.Survey
	if err := json.Unmarshal(body, &survey); err != nil {
		t.Fatal(err)
	}

	status, body = ts.do(t, http.MethodPost, "/api/admin/questions", token, map[string]any{
		"survey": survey.ID, "title": "Pick", "q_type": "select",
	})
	if status != http.StatusBadRequest {
		t.Errorf("select without options: status %d: %s", status, body)
	}

	status, body = ts.do(t, http.MethodPost, "/api/admin/questions", token, map[string]any{
		"survey": survey.ID, "title": "Pick", "q_type": "select", "options": []string{"A", "B"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create question status %d: %s", status, body)
	}
	var question model.Question
	if err := json.Unmarshal(body, &question); err != nil {
		t.Fatal(err)
	}
	if question.Type != model.Select || len(question.Options) != 2 {
		t.Errorf("question = %s", body)
	}

	status, body = ts.do(t, http.MethodPost, "/api/admin/questions", token, map[string]any{
		"survey": survey.ID, "title": "Why?", "q_type": "text",
	})
	if status != http.StatusCreated {
		t.Fatalf("create text question status %d: %s", status, body)
	}
	var textQuestion model.Question
	if err := json.Unmarshal(body, &textQuestion); err != nil {
		t.Fatal(err)
	}

	status, body = ts.do(t, http.MethodPost, "/api/admin/options", token, map[string]any{
		"question": textQuestion.ID, "text": "nope",
	})
	if status != http.StatusBadRequest {
		t.Errorf("option on text question: status %d: %s", status, body)
	}
	status, body = ts.do(t, http.MethodPut, fmt.Sprintf("/api/admin/questions/%d", textQuestion.ID), token, map[string]any{
		"title": "Why?", "q_type": "multiply_select",
	})
	if status != http.StatusBadRequest {
		t.Errorf("text to choice without options: status %d: %s", status, body)
	}

	status, body = ts.do(t, http.MethodPost, "/api/admin/options", token, map[string]any{
		"question": question.ID, "text": "C",
	})
	if status != http.StatusCreated {
		t.Fatalf("create option status %d: %s", status, body)
	}
	var optionC model.Option
	if err := json.Unmarshal(body, &optionC); err != nil {
		t.Fatal(err)
	}

	status, body = ts.do(t, http.MethodPut, fmt.Sprintf("/api/admin/surveys/%d", survey.ID), token, map[string]any{
		"title":    "Feedback 1",
		"end_date": "2024-04-15",
	})
	if status != http.StatusOK {
		t.Errorf("update survey without start_date: status %d: %s", status, body)
	}

	status, body = ts.do(t, http.MethodPut, fmt.Sprintf("/api/admin/surveys/%d", survey.ID), token, map[string]any{
		"title":      "Feedback 2",
		"start_date": "2030-01-01",
		"end_date":   "2024-04-30",
	})
	if status != http.StatusOK {
		t.Fatalf("update survey status %d: %s", status, body)
	}
	var updated model.Survey
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Feedback 2" || updated.StartDate.String() != "2024-03-01" || len(updated.Questions) != 2 {
		t.Errorf("updated survey = %s", body)
	}
	if len(updated.Questions[0].Options) != 3 {
		t.Errorf("question options = %+v", updated.Questions[0].Options)
	}

	for _, id := range []int64{question.Options[0].ID, question.Options[1].ID} {
		status, body = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/options/%d", id), token, nil)
		if status != http.StatusNoContent {
			t.Errorf("delete option %d: status %d: %s", id, status, body)
		}
	}
	status, body = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/options/%d", optionC.ID), token, nil)
	if status != http.StatusBadRequest {
		t.Errorf("delete last option: status %d: %s", status, body)
	}
	status, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/admin/options/%d", optionC.ID), token, nil)
	if status != http.StatusOK {
		t.Errorf("last option after refused delete: status %d", status)
	}

	status, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/surveys/%d", survey.ID), token, nil)
	if status != http.StatusNoContent {
		t.Errorf("delete survey status %d", status)
	}
	status, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/admin/questions/%d", question.ID), token, nil)
	if status != http.StatusNotFound {
		t.Errorf("question after survey delete: status %d, want 404", status)
	}
}
