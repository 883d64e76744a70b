package domain

import amqp "github.com/rabbitmq/amqp091-go"

// Delivery pairs a decoded message with the broker delivery to ack
type Delivery struct {
	Message *ActivityMessage
	Raw     amqp.Delivery
}
