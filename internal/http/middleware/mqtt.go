package middleware

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Displays that keep a broker connection get told to re-poll as soon
// as their configuration changes instead of waiting out the poll
// interval. The broker is optional; without one the displays just
// pick changes up on the next poll.
var mqttClient mqtt.Client

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

// InitMQTT connects the server-side publisher. Call once at startup;
// a failure disables push notifications but nothing else.
func InitMQTT(brokerURL string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID("school-clock-server")
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	mqttClient = client
	return nil
}

// NotifyInstances publishes a refresh hint to every listed instance's
// topic. Best effort: a missing broker or failed publish is logged and
// otherwise ignored.
func NotifyInstances(instanceIDs []int) {
	if mqttClient == nil {
		return
	}
	for _, id := range instanceIDs {
		topic := fmt.Sprintf("instances/%d", id)
		if token := mqttClient.Publish(topic, 1, false, "refresh"); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", topic).Msg("failed to publish instance refresh")
		}
	}
}
