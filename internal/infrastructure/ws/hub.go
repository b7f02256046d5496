package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
)

// Client lo que el hub necesita de una conexión (*websocket.Conn lo cumple).
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var (
	_ Client         = (*websocket.Conn)(nil)
	_ sales.Notifier = (*Hub)(nil)
)

// broadcastBuffer eventos en cola antes de descartar.
const broadcastBuffer = 64

// Hub reparte los eventos de venta a los clientes conectados.
type Hub struct {
	clients    map[Client]bool
	register   chan Client
	unregister chan Client
	broadcast  chan []byte
	done       chan struct{} // cerrado cuando Run termina
	mutex      sync.Mutex
	log        *logger.Logger
}

// NewHub crea el hub. Llamar Run en una goroutine.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients:    make(map[Client]bool),
		register:   make(chan Client),
		unregister: make(chan Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run atiende altas, bajas y difusión hasta que ctx se cancele; al salir cierra todos los clientes.
// Run se llama una sola vez.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				_ = c.Close()
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug().Int("clients", n).Msg("cliente ws conectado")

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				_ = c.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = c.Close()
					delete(h.clients, c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register agrega un cliente. Bloquea hasta que Run lo atienda; si Run ya terminó cierra el cliente.
func (h *Hub) Register(c Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.Close()
	}
}

// Unregister retira y cierra un cliente. Con Run terminado no hace nada: los clientes ya se cerraron.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients número de clientes conectados.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish serializa el evento y lo encola sin bloquear; si la cola está llena se descarta.
func (h *Hub) Publish(event sales.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Msg("evento ws no serializable")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn().Str("type", event.Type).Int64("sale_number", event.SaleNumber).Msg("cola ws llena, evento descartado")
	}
}

// Handler devuelve el handler Fiber de la conexión: registra, lee hasta que el cliente cierre y da de baja.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		h.Register(c)
		defer h.Unregister(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
