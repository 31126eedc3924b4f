package main

import (
	"log"
	"os"

	"github.com/matst80/slask-refine/pkg/common"
	amqp "github.com/rabbitmq/amqp091-go"
)

var country = "se"

func init() {
	c, ok := os.LookupEnv("COUNTRY")
	if ok {
		country = c
	}
}

func main() {
	amqpUrl, ok := os.LookupEnv("RABBIT_URL")
	if !ok {
		log.Fatal("RABBIT_URL environment variable is not set")
	}
	conn, err := amqp.DialConfig(amqpUrl, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	app := &WriterApp{sender: NewAmqpSender(country, conn)}

	timeouts := common.LoadTimeoutConfig(common.DefaultTimeouts)
	server := common.NewServer(":8080", app.Handler(), timeouts)
	common.RunServerWithShutdown(server, "writer", timeouts.Shutdown, timeouts.Hook, nil)
}
