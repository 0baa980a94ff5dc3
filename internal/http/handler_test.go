package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"horizonte-forms/internal/cep"
	"horizonte-forms/internal/service"
)

type stubLookup struct {
	address cep.Address
	err     error
}

func (s stubLookup) Lookup(ctx context.Context, rawCEP string) (cep.Address, error) {
	return s.address, s.err
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.New(service.WithCEPLookup(stubLookup{
		address: cep.Address{CEP: "50030-230", Street: "Rua do Bom Jesus", Neighborhood: "Recife", City: "Recife", State: "PE"},
	}))
	return NewRouter(svc, "")
}

func doJSON(router *gin.Engine, method string, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, problemContentType) {
		t.Fatalf("expected %s content type, got %q", problemContentType, got)
	}
	var problem ProblemDetails
	if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return problem
}

func TestHealth(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected %s header", headerRequestID)
	}
}

func TestValidateRoute(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodPost, "/api/v1/validations/cpf", `{"value":"529.982.247-25"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		IsValid bool   `json:"is_valid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.IsValid || body.Message != "CPF válido" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestValidateRouteUnknownKind(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodPost, "/api/v1/validations/passport", `{"value":"X1"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	problem := decodeProblem(t, w)
	if problem.Type != problemTypeNotFound || problem.Status != http.StatusNotFound {
		t.Fatalf("unexpected problem %+v", problem)
	}
}

func TestValidateRouteRejectsMalformedKind(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodPost, "/api/v1/validations/cpf!", `{"value":"1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if problem := decodeProblem(t, w); problem.Type != problemTypeInvalidParam {
		t.Fatalf("unexpected problem type %q", problem.Type)
	}
}

func TestMaskRoute(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodPost, "/api/v1/masks/phone", `{"value":"81987654321"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body service.MaskOutput
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Value != "(81) 98765-4321" {
		t.Fatalf("expected masked phone, got %q", body.Value)
	}
}

func TestFormValidateRequiresFields(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodPost, "/api/v1/forms/validate", `{"fields":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCEPRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cep/50030-230?field_id=doacao-cep", nil)
	req.Header.Set(headerClientID, "sessao-1")
	w := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body service.CEPOutput
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Found || body.Address == nil || body.Address.State != "PE" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestCEPRouteFieldRequiresClientID(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodGet, "/api/v1/cep/50030230?field_id=doacao-cep", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if problem := decodeProblem(t, w); problem.Type != problemTypeValidation {
		t.Fatalf("unexpected problem type %q", problem.Type)
	}

	w = doJSON(newTestRouter(t), http.MethodGet, "/api/v1/cep/50030230", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without field_id, got %d", w.Code)
	}
}

func TestContactRouteBindsPhoneTag(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/contact",
		`{"name":"Ana","email":"ana@example.com","phone":"12345","message":"Olá"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if problem := decodeProblem(t, w); !strings.Contains(problem.Detail, "br_phone") {
		t.Fatalf("expected br_phone failure, got %q", problem.Detail)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/contact",
		`{"name":"Ana","email":"ana@example.com","phone":"(81) 98765-4321","message":"Olá"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDonorRouteBindsTaxIDTag(t *testing.T) {
	w := doJSON(newTestRouter(t), http.MethodPost, "/api/v1/donors",
		`{"name":"João","email":"joao@example.com","tax_id_number":"11.222.333/0001-82","amount_cents":5000}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if problem := decodeProblem(t, w); !strings.Contains(problem.Detail, "taxid") {
		t.Fatalf("expected taxid failure, got %q", problem.Detail)
	}
}

func TestPanicRecoveryWritesProblem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(panicRecoveryMiddleware(nil))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := doJSON(router, http.MethodGet, "/boom", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if problem := decodeProblem(t, w); problem.Type != problemTypeInternal {
		t.Fatalf("unexpected problem type %q", problem.Type)
	}
}

func TestParseKindNormalizes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "kind", Value: " CNPJ "}}

	kind, err := parseKind(c, "kind")
	if err != nil {
		t.Fatalf("parseKind: %v", err)
	}
	if kind != "cnpj" {
		t.Fatalf("expected cnpj, got %q", kind)
	}
}
