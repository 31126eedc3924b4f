package main

import (
	"log"

	"github.com/matst80/slask-refine/pkg/messaging"
	ffSync "github.com/matst80/slask-refine/pkg/sync"
	amqp "github.com/rabbitmq/amqp091-go"
)

type ChangeSender interface {
	SendChange(change *ffSync.ItemChange) error
}

type AmqpSender struct {
	Country    string
	connection *amqp.Connection
}

func NewAmqpSender(country string, conn *amqp.Connection) *AmqpSender {
	r := &AmqpSender{
		Country:    country,
		connection: conn,
	}
	r.defineTopics()
	return r
}

func (s *AmqpSender) SendChange(change *ffSync.ItemChange) error {
	return messaging.SendChange(s.connection, s.Country, messaging.ItemsChanged, change)
}

func (s *AmqpSender) defineTopics() {
	ch, err := s.connection.Channel()
	if err != nil {
		log.Fatalf("failed to open a channel: %v", err)
	}
	defer ch.Close()
	if err := messaging.DefineTopic(ch, s.Country, messaging.ItemsChanged); err != nil {
		log.Fatalf("failed to declare topic %s: %v", messaging.ItemsChanged, err)
	}
}
