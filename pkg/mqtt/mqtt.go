// Package mqtt provides MQTT communication capabilities for the bot.
// It publishes moderation events and answers request/response queries
// from other services on the bus.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	requestPrefix  = "pancy/request/"
	responsePrefix = "pancy/response/"

	// connectWait bounds how long startup waits for the first connection;
	// the client keeps retrying in the background afterwards.
	connectWait = 10 * time.Second
	publishWait = 5 * time.Second
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client   mqtt.Client
	clientID string
	mu       sync.Mutex
	handlers map[string]RequestHandler
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(host, port, username, password, clientID string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

// NewMqttCommunicator creates a new MQTT communicator and starts connecting
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	mc := &MqttCommunicator{
		clientID: clientID,
		handlers: make(map[string]RequestHandler),
	}

	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
			mc.resubscribe()
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(opts)

	token := mc.client.Connect()
	if !token.WaitTimeout(connectWait) {
		logger.Warn("El broker MQTT no respondió a tiempo, se seguirá reintentando en segundo plano", "MQTT")
	} else if token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return mc
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.client != nil && mc.client.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc != nil && mc.client != nil && mc.client.IsConnected()
}

// Publish sends a JSON-encoded message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, data)
	if !token.WaitTimeout(publishWait) {
		return fmt.Errorf("publicar en '%s' ha expirado (timeout)", topic)
	}
	return token.Error()
}

// RequestHandler is a function type for handling MQTT requests
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// On registers a handler for a request topic. Handlers survive reconnects.
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) {
	mc.mu.Lock()
	mc.handlers[requestTopic] = callback
	mc.mu.Unlock()

	mc.subscribe(requestTopic, callback)
}

func (mc *MqttCommunicator) resubscribe() {
	mc.mu.Lock()
	handlers := make(map[string]RequestHandler, len(mc.handlers))
	for k, v := range mc.handlers {
		handlers[k] = v
	}
	mc.mu.Unlock()

	for topic, cb := range handlers {
		mc.subscribe(topic, cb)
	}
}

func (mc *MqttCommunicator) subscribe(requestTopic string, callback RequestHandler) {
	topic := requestPrefix + requestTopic

	token := mc.client.Subscribe(topic, 0, func(c mqtt.Client, msg mqtt.Message) {
		// paho runs callbacks on its router goroutine; don't block it
		errors.Go(func() {
			mc.handleRequest(msg.Topic(), msg.Payload(), callback)
		})
	})

	if !token.WaitTimeout(publishWait) {
		logger.Warn(fmt.Sprintf("Suscripción a %s pendiente", topic), "MQTT")
		return
	}
	if token.Error() != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, token.Error()), "MQTT")
	}
}

// handleRequest decodes a request, runs the callback and publishes the response
func (mc *MqttCommunicator) handleRequest(receivedTopic string, raw []byte, callback RequestHandler) {
	responseTopic, response, ok := buildResponse(receivedTopic, raw, callback)
	if !ok {
		return
	}
	if err := mc.Publish(responseTopic, response); err != nil {
		logger.Error(fmt.Sprintf("Error publicando respuesta en %s: %v", responseTopic, err), "MQTT")
	}
}

// buildResponse is the broker-independent part of request handling
func buildResponse(receivedTopic string, raw []byte, callback RequestHandler) (string, MqttResponse, bool) {
	var request MqttRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return "", MqttResponse{}, false
	}

	actualTopic := strings.TrimPrefix(receivedTopic, requestPrefix)
	responseTopic := fmt.Sprintf("%s%s/%s", responsePrefix, actualTopic, request.CorrelationID)

	payloadMap := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		payloadMap = pm
	}
	payloadMap["_topic"] = actualTopic

	data, err := callback(payloadMap)
	if err != nil {
		return responseTopic, MqttResponse{CorrelationID: request.CorrelationID, Error: err.Error()}, true
	}
	return responseTopic, MqttResponse{CorrelationID: request.CorrelationID, Data: data}, true
}
