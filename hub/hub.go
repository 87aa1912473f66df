package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/canteen-app/models"
)

// Event types
const (
	EventPollUpdate         = "poll_update"
	EventResponseUpdate     = "response_update"
	EventConfirmationUpdate = "confirmation_update"
	EventInventoryLow       = "inventory_low"
	EventInvoiceGenerated   = "invoice_generated"
	EventDashboardUpdate    = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client (admins and users) and fans out
// attendance events to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var attendanceHub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	attendanceHub.mutex.Lock()
	defer attendanceHub.mutex.Unlock()
	attendanceHub.clients[conn] = role
}

// UnregisterClient drops a connection.
func UnregisterClient(conn *websocket.Conn) {
	attendanceHub.mutex.Lock()
	defer attendanceHub.mutex.Unlock()
	delete(attendanceHub.clients, conn)
	conn.Close()
}

// BroadcastPollUpdate announces a newly created or resolved poll.
func BroadcastPollUpdate(poll interface{}) {
	broadcast(Message{Event: EventPollUpdate, Data: poll})
}

// BroadcastResponseUpdate announces a cast or self-reported response.
func BroadcastResponseUpdate(resp models.PollResponse) {
	broadcast(Message{Event: EventResponseUpdate, Data: resp})
}

// BroadcastConfirmationUpdate announces an admin-side transition.
func BroadcastConfirmationUpdate(resp models.PollResponse) {
	broadcast(Message{Event: EventConfirmationUpdate, Data: resp})
}

// BroadcastInventoryLow warns dashboards about an item under threshold.
func BroadcastInventoryLow(item models.InventoryItem) {
	broadcast(Message{Event: EventInventoryLow, Data: item})
}

// BroadcastInvoiceGenerated announces a freshly generated invoice.
func BroadcastInvoiceGenerated(invoice models.Invoice) {
	broadcast(Message{Event: EventInvoiceGenerated, Data: invoice})
}

// BroadcastDashboardUpdate pushes recomputed dashboard stats.
func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{Event: EventDashboardUpdate, Data: data})
}

func broadcast(msg Message) {
	attendanceHub.mutex.Lock()
	defer attendanceHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range attendanceHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to %s client: %v", role, err)
			continue
		}
	}
}
