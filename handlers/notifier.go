package handlers

import (
	"fmt"

	"butler-server/models"
	"butler-server/store"
)

// HubNotifier delivers fired reminders: the notification is persisted as an
// assistant message so it survives in the conversation history, then pushed
// to the owner's live connections.
type HubNotifier struct {
	hub   *Hub
	store *store.Store
}

func NewHubNotifier(hub *Hub, s *store.Store) *HubNotifier {
	return &HubNotifier{hub: hub, store: s}
}

func (n *HubNotifier) Notify(ownerID, text string) error {
	msg, err := n.store.CreateMessage(ownerID, models.SenderAssistant, text)
	if err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	n.hub.SendToUser(ownerID, models.WSMessage{
		Type:    models.WSTypeNewMessage,
		Payload: msg,
	})
	n.hub.SendToUser(ownerID, models.WSMessage{
		Type:    models.WSTypeReminder,
		Payload: map[string]string{"text": text},
	})
	return nil
}
