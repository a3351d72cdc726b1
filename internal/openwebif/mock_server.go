// SPDX-License-Identifier: MIT
package openwebif

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockServer is a configurable OpenWebIF receiver for tests.
type MockServer struct {
	*httptest.Server
	mu        sync.Mutex
	bouquets  map[string][]Service
	epgEvents map[string][]EPGEvent
	timers    []Timer
	failures  map[string]int // failures before success per endpoint
	status    map[string]int // failure status per endpoint, default 500
	rejects   map[string]string
	requests  map[string]int
}

// NewMockServer starts a mock receiver with no channels.
func NewMockServer() *MockServer {
	m := &MockServer{
		bouquets:  make(map[string][]Service),
		epgEvents: make(map[string][]EPGEvent),
		failures:  make(map[string]int),
		status:    make(map[string]int),
		rejects:   make(map[string]string),
		requests:  make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/getallservices", m.handleAllServices)
	mux.HandleFunc("/api/getservices", m.handleServices)
	mux.HandleFunc("/api/epgservice", m.handleEPG)
	mux.HandleFunc("/api/timerlist", m.handleTimerList)
	mux.HandleFunc("/api/timeradd", m.handleTimerAdd)
	mux.HandleFunc("/api/timerdelete", m.handleTimerDelete)

	m.Server = httptest.NewServer(mux)
	return m
}

// AddService adds a channel to a bouquet.
func (m *MockServer) AddService(bouquetRef, serviceRef, serviceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bouquets[bouquetRef] = append(m.bouquets[bouquetRef], Service{Ref: serviceRef, Name: serviceName})
}

// AddEPGEvent adds a guide entry for a channel.
func (m *MockServer) AddEPGEvent(serviceRef string, event EPGEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epgEvents[serviceRef] = append(m.epgEvents[serviceRef], event)
}

// AddTimer seeds an existing timer.
func (m *MockServer) AddTimer(t Timer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = append(m.timers, t)
}

// Timers returns a copy of the current timers.
func (m *MockServer) Timers() []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Timer(nil), m.timers...)
}

// SetFailures makes the next count requests to endpoint fail with status.
func (m *MockServer) SetFailures(endpoint string, count, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[endpoint] = count
	m.status[endpoint] = status
}

// RejectTimers makes timeradd answer {"result": false} with message.
func (m *MockServer) RejectTimers(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejects["/api/timeradd"] = message
}

// Requests returns how many requests endpoint received.
func (m *MockServer) Requests(endpoint string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[endpoint]
}

// begin counts the request and reports whether an injected failure was sent.
// Callers hold m.mu.
func (m *MockServer) begin(w http.ResponseWriter, endpoint string) bool {
	m.requests[endpoint]++
	if n := m.failures[endpoint]; n > 0 {
		m.failures[endpoint] = n - 1
		status := m.status[endpoint]
		if status == 0 {
			status = http.StatusInternalServerError
		}
		http.Error(w, http.StatusText(status), status)
		return true
	}
	return false
}

func (m *MockServer) handleAllServices(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.begin(w, r.URL.Path) {
		return
	}

	resp := servicesResponse{}
	for ref, services := range m.bouquets {
		resp.Services = append(resp.Services, bouquetEntry{
			Service:     Service{Ref: ref, Name: ref},
			SubServices: services,
		})
	}
	writeJSON(w, resp)
}

func (m *MockServer) handleServices(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.begin(w, r.URL.Path) {
		return
	}

	bouquetRef := r.URL.Query().Get("sRef")
	if bouquetRef == "" {
		http.Error(w, "Missing sRef parameter", http.StatusBadRequest)
		return
	}
	resp := servicesResponse{}
	for _, s := range m.bouquets[bouquetRef] {
		resp.Services = append(resp.Services, bouquetEntry{Service: s})
	}
	writeJSON(w, resp)
}

func (m *MockServer) handleEPG(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.begin(w, r.URL.Path) {
		return
	}

	sRef := r.URL.Query().Get("sRef")
	events := append([]EPGEvent{}, m.epgEvents[sRef]...)
	for i := range events {
		if events[i].ServiceRef == "" {
			events[i].ServiceRef = sRef
		}
	}
	writeJSON(w, EPGResponse{Events: events})
}

func (m *MockServer) handleTimerList(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.begin(w, r.URL.Path) {
		return
	}
	writeJSON(w, timerListResponse{Result: true, Timers: append([]Timer{}, m.timers...)})
}

func (m *MockServer) handleTimerAdd(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.begin(w, r.URL.Path) {
		return
	}
	if msg, ok := m.rejects[r.URL.Path]; ok {
		writeJSON(w, resultResponse{Result: false, Message: msg})
		return
	}

	q := r.URL.Query()
	begin, err1 := strconv.ParseInt(q.Get("begin"), 10, 64)
	end, err2 := strconv.ParseInt(q.Get("end"), 10, 64)
	if err1 != nil || err2 != nil || q.Get("sRef") == "" {
		writeJSON(w, resultResponse{Result: false, Message: "invalid timer parameters"})
		return
	}
	for _, t := range m.timers {
		if t.ServiceRef == q.Get("sRef") && int64(t.Begin) < end && begin < int64(t.End) {
			writeJSON(w, resultResponse{Result: false, Message: fmt.Sprintf("Conflicting Timer(s) detected! %s", t.Name)})
			return
		}
	}
	m.timers = append(m.timers, Timer{
		ServiceRef:  q.Get("sRef"),
		Name:        q.Get("name"),
		Description: q.Get("description"),
		Begin:       IntOrStringInt64(begin),
		End:         IntOrStringInt64(end),
	})
	writeJSON(w, resultResponse{Result: true, Message: "Timer added"})
}

func (m *MockServer) handleTimerDelete(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.begin(w, r.URL.Path) {
		return
	}

	q := r.URL.Query()
	for i, t := range m.timers {
		if t.ServiceRef == q.Get("sRef") &&
			strconv.FormatInt(int64(t.Begin), 10) == q.Get("begin") &&
			strconv.FormatInt(int64(t.End), 10) == q.Get("end") {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			writeJSON(w, resultResponse{Result: true, Message: "Timer deleted"})
			return
		}
	}
	writeJSON(w, resultResponse{Result: false, Message: "Timer not found"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
