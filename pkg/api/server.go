package api

import (
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"hsc-firmware/pkg/core"
	"hsc-firmware/pkg/globals"
	"hsc-firmware/pkg/logger"
	"hsc-firmware/pkg/wifi"
)

//go:embed assets
var assets embed.FS

// Server exposes the configuration UI and JSON API. It only consumes the
// core's public contract and never touches core state directly.
type Server struct {
	core    *core.Core
	station *wifi.Station
	page    *template.Template
	srv     *http.Server
}

func New(c *core.Core, station *wifi.Station) (*Server, error) {
	page, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return nil, err
	}

	s := &Server{core: c, station: station, page: page}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /style.css", s.handleStyle)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleSaveSettings)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/locate", s.handleLocate)
	mux.HandleFunc("POST /api/restart", s.handleRestart)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("GET /ws/status", s.handleStatusSocket)

	s.srv = &http.Server{Addr: globals.HTTPAddr, Handler: mux}
	return s, nil
}

// Handler returns the route table, used by tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves in the background. The firmware keeps running even if the
// listener fails; the device is then only reachable over MQTT.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server failed: %v", err)
		}
	}()
}

type pageData struct {
	FWRev      string
	IP         string
	Hostname   string
	SSID       string
	BoardID    int
	MQTTStatus string
	Status     core.Snapshot
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg := s.core.GetConfiguration()
	summary := s.core.GetConnectivitySummary()

	ip := globals.FallbackAPAddress
	if s.core.WifiStateNow() == core.WifiConnected {
		ip = s.station.IPAddress()
	}

	mqttStatus := "Unconfigured"
	if summary.IsConfigured {
		mqttStatus = "Disconnected"
		if summary.MQTTConnected {
			mqttStatus = "Connected"
		}
	}

	data := pageData{
		FWRev:      globals.FirmwareVersion,
		IP:         ip,
		Hostname:   s.station.Hostname(),
		SSID:       summary.SSID,
		BoardID:    cfg.BoardID,
		MQTTStatus: mqttStatus,
		Status:     s.core.GetStatusSnapshot(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Printf("Failed to render page: %v", err)
	}
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	data, err := assets.ReadFile("assets/style.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css")
	w.Write(data)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.core.GetConfiguration())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var update core.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Invalid JSON"})
		return
	}

	if err := s.core.SetConfiguration(update); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to save settings"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Settings saved. Rebooting..."})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.core.ResetConfiguration(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "Failed to reset settings"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Settings reset. Rebooting..."})
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	// Prefer the form value, fall back to the query string
	state := r.PostFormValue("state")
	if state == "" {
		state = r.URL.Query().Get("state")
	}
	if state == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "Missing state param"})
		return
	}

	s.core.SetLocate(state == "true" || state == "1")
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.core.RequestReboot()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Rebooting..."})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.core.GetStatusSnapshot())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, logger.GetLogs())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
