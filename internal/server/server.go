package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/franckalain/allergenscan/internal/allergen"
	"github.com/franckalain/allergenscan/internal/foodfacts"
	"github.com/franckalain/allergenscan/internal/lookup"
	"github.com/franckalain/allergenscan/internal/ml"
	"github.com/franckalain/allergenscan/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const maxImageBytes = 10 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the scanner app is served from a different origin
	},
}

// ProductLookup resolves barcodes
type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) lookup.Result
}

// HistoryStore exposes the scan history to clients
type HistoryStore interface {
	Get(ctx context.Context) []models.Product
	Clear(ctx context.Context)
}

// LabelResult is the classification of a photographed label
type LabelResult struct {
	IngredientsText string             `json:"ingredients_text"`
	Ingredients     []string           `json:"ingredients"`
	Allergens       models.AllergenMap `json:"allergens"`
}

type Server struct {
	lookup  ProductLookup
	history HistoryStore
	model   ml.Model
	clients sync.Map
	debug   bool
}

func New(lookup ProductLookup, history HistoryStore, model ml.Model, debug bool) *Server {
	if debug {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Debug logging enabled")
	}
	return &Server{
		lookup:  lookup,
		history: history,
		model:   model,
		debug:   debug,
	}
}

// Handler returns the HTTP routes. Static files are served from staticDir
// when it is not empty.
func (s *Server) Handler(staticDir string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products/{barcode}", s.handleGetProduct).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleGetHistory).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleClearHistory).Methods(http.MethodDelete)
	api.HandleFunc("/labels", s.handleLabel).Methods(http.MethodPost)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}

func (s *Server) Start(port, staticDir string) error {
	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(staticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s\n", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeClients()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) closeClients() {
	s.clients.Range(func(key, value any) bool {
		if conn, ok := value.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	barcode := mux.Vars(r)["barcode"]
	res := s.lookup.Lookup(r.Context(), barcode)
	if s.debug {
		log.Printf("Lookup %s resolved as %s", barcode, res.Outcome)
	}
	writeJSON(w, http.StatusOK, res.Product)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.Get(r.Context()))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.history.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	imageData, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	if len(imageData) == 0 {
		writeError(w, http.StatusBadRequest, "Missing image data")
		return
	}

	reading, err := s.model.ReadLabel(r.Context(), imageData)
	switch {
	case errors.Is(err, ml.ErrNoModel):
		writeError(w, http.StatusServiceUnavailable, "Label reading is not configured")
		return
	case errors.Is(err, ml.ErrUnreadableLabel):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Printf("Error reading label: %v", err)
		writeError(w, http.StatusBadGateway, "Failed to process image")
		return
	}

	writeJSON(w, http.StatusOK, classifyLabel(reading))
}

func classifyLabel(reading *models.LabelReading) LabelResult {
	return LabelResult{
		IngredientsText: reading.IngredientsText,
		Ingredients:     foodfacts.SplitIngredients(reading.IngredientsText),
		Allergens:       allergen.Classify(reading.AllergenTags, reading.TraceTags, reading.IngredientsText),
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	// Store client connection
	clientID := uuid.New().String()
	s.clients.Store(clientID, conn)
	defer s.clients.Delete(clientID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Error reading message:", err)
			}
			break
		}

		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Println("Error parsing message:", err)
			s.sendError(conn, "Invalid message format")
			continue
		}

		s.handleWebSocketMessage(r.Context(), conn, msg)
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn *websocket.Conn, message map[string]any) {
	messageType, ok := message["type"].(string)
	if !ok {
		s.sendError(conn, "Invalid message format")
		return
	}

	data, _ := message["data"].(map[string]any)

	switch messageType {
	case "lookup":
		barcode, ok := data["barcode"].(string)
		if !ok || barcode == "" {
			s.sendError(conn, "Invalid barcode")
			return
		}
		res := s.lookup.Lookup(ctx, barcode)
		s.sendMessage(conn, "product", res.Product)
	case "get_history":
		s.sendMessage(conn, "history", s.history.Get(ctx))
	case "clear_history":
		s.history.Clear(ctx)
		s.sendMessage(conn, "history_cleared", nil)
	default:
		s.sendError(conn, "Unknown message type")
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}

	if s.debug {
		log.Printf("Sending message to client - Type: %s", messageType)
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Println("Error sending message:", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}

	if err := conn.WriteJSON(msg); err != nil {
		log.Println("Error sending error message:", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("Error writing response:", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
