package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pb "github.com/arimanyus/meanshift/pkg/api/grpc/proto"
)

// Handler wraps a gRPC client and translates JSON HTTP bodies into the
// proto package's request/response structs, adapted from the teacher's
// pkg/api/rest Handler (which wrapped pb.VectorDBClient the same way).
type Handler struct {
	client pb.KDEClient
}

// NewHandler creates a new REST API handler.
func NewHandler(client pb.KDEClient) *Handler {
	return &Handler{client: client}
}

// pathModel extracts the {name} segment from /v1/models/{name}[/op].
func pathModel(r *http.Request, suffix string) (string, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/models/")
	path = strings.TrimSuffix(path, suffix)
	path = strings.TrimSuffix(path, "/")
	if path == "" || strings.Contains(path, "/") {
		return "", false
	}
	return path, true
}

// ListModels handles GET /v1/models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp, err := h.client.ListModels(r.Context(), &pb.Empty{})
	if err != nil {
		writeError(w, fmt.Sprintf("list models failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// CreateModel handles POST /v1/models.
func (h *Handler) CreateModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req pb.CreateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if _, err := h.client.CreateModel(r.Context(), &req); err != nil {
		writeError(w, fmt.Sprintf("create model failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"model": req.Model}, http.StatusCreated)
}

// DeleteModel handles DELETE /v1/models/{name}.
func (h *Handler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}", http.StatusBadRequest)
		return
	}
	if _, err := h.client.DeleteModel(r.Context(), &pb.DeleteModelRequest{Model: name}); err != nil {
		writeError(w, fmt.Sprintf("delete model failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"deleted": name}, http.StatusOK)
}

// Stats handles GET /v1/models/{name}/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/stats")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/stats", http.StatusBadRequest)
		return
	}
	resp, err := h.client.Stats(r.Context(), &pb.ModelRequest{Model: name})
	if err != nil {
		writeError(w, fmt.Sprintf("stats failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// decodeBody decodes the JSON request body into v. It does not touch v's
// Model field; callers set that from the URL themselves.
func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// SetData handles PUT /v1/models/{name}/data.
func (h *Handler) SetData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/data")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/data", http.StatusBadRequest)
		return
	}
	var req pb.SetDataRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	if _, err := h.client.SetData(r.Context(), &req); err != nil {
		writeError(w, fmt.Sprintf("set data failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// SetKernel handles PUT /v1/models/{name}/kernel.
func (h *Handler) SetKernel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/kernel")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/kernel", http.StatusBadRequest)
		return
	}
	var req pb.SetKernelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	if _, err := h.client.SetKernel(r.Context(), &req); err != nil {
		writeError(w, fmt.Sprintf("set kernel failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// SetScale handles PUT /v1/models/{name}/scale.
func (h *Handler) SetScale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/scale")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/scale", http.StatusBadRequest)
		return
	}
	var req pb.SetScaleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	if _, err := h.client.SetScale(r.Context(), &req); err != nil {
		writeError(w, fmt.Sprintf("set scale failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// ScaleSilverman handles POST /v1/models/{name}/scale-silverman.
func (h *Handler) ScaleSilverman(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/scale-silverman")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/scale-silverman", http.StatusBadRequest)
		return
	}
	if _, err := h.client.ScaleSilverman(r.Context(), &pb.ModelRequest{Model: name}); err != nil {
		writeError(w, fmt.Sprintf("scale silverman failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// ScaleScott handles POST /v1/models/{name}/scale-scott.
func (h *Handler) ScaleScott(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/scale-scott")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/scale-scott", http.StatusBadRequest)
		return
	}
	if _, err := h.client.ScaleScott(r.Context(), &pb.ModelRequest{Model: name}); err != nil {
		writeError(w, fmt.Sprintf("scale scott failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// SetSpatial handles PUT /v1/models/{name}/spatial.
func (h *Handler) SetSpatial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/spatial")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/spatial", http.StatusBadRequest)
		return
	}
	var req pb.SetSpatialRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	if _, err := h.client.SetSpatial(r.Context(), &req); err != nil {
		writeError(w, fmt.Sprintf("set spatial failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// SetBalls handles PUT /v1/models/{name}/balls.
func (h *Handler) SetBalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/balls")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/balls", http.StatusBadRequest)
		return
	}
	var req pb.SetBallsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	if _, err := h.client.SetBalls(r.Context(), &req); err != nil {
		writeError(w, fmt.Sprintf("set balls failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// Prob handles POST /v1/models/{name}/prob.
func (h *Handler) Prob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/prob")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/prob", http.StatusBadRequest)
		return
	}
	var req pb.ProbRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	resp, err := h.client.Prob(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("prob failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// Mode handles POST /v1/models/{name}/mode.
func (h *Handler) Mode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/mode")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/mode", http.StatusBadRequest)
		return
	}
	var req pb.ModeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	resp, err := h.client.Mode(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("mode failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// Manifold handles POST /v1/models/{name}/manifold.
func (h *Handler) Manifold(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/manifold")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/manifold", http.StatusBadRequest)
		return
	}
	var req pb.ManifoldRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	resp, err := h.client.Manifold(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("manifold failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// Cluster handles POST /v1/models/{name}/cluster.
func (h *Handler) Cluster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/cluster")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/cluster", http.StatusBadRequest)
		return
	}
	resp, err := h.client.Cluster(r.Context(), &pb.ModelRequest{Model: name})
	if err != nil {
		writeError(w, fmt.Sprintf("cluster failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// AssignCluster handles POST /v1/models/{name}/assign.
func (h *Handler) AssignCluster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/assign")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/assign", http.StatusBadRequest)
		return
	}
	var req pb.AssignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	resp, err := h.client.AssignCluster(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("assign cluster failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// Draw handles POST /v1/models/{name}/draw.
func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/draw")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/draw", http.StatusBadRequest)
		return
	}
	var req pb.DrawRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	resp, err := h.client.Draw(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("draw failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// Bootstrap handles POST /v1/models/{name}/bootstrap.
func (h *Handler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := pathModel(r, "/bootstrap")
	if !ok {
		writeError(w, "invalid URL, expected /v1/models/{name}/bootstrap", http.StatusBadRequest)
		return
	}
	var req pb.DrawRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	req.Model = name
	resp, err := h.client.Bootstrap(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("bootstrap failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// Mult handles POST /v1/sample/mult, drawing from the product of several
// models' KDEs (spec §4.8's mult — it names no single model in the URL).
func (h *Handler) Mult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req pb.MultRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	resp, err := h.client.Mult(r.Context(), &req)
	if err != nil {
		writeError(w, fmt.Sprintf("mult failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}
