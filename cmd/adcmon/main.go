package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/adclink/pkg/bridge/mqtt"
	"github.com/robotalks/adclink/pkg/bridge/payload"
	"github.com/robotalks/adclink/pkg/config"
)

var (
	mqttURL = "mqtt://localhost:1883/adc/"
	codec   = "json"
)

func init() {
	if val := os.Getenv(config.EnvMQTTURL); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&codec, "codec", codec, "Payload codec: json or proto.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	c, err := payload.CodecByName(codec)
	if err != nil {
		log.Fatalln(err)
	}
	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, data []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+mqtt.TopicSamples):
			s, err := c.DecodeSample(data)
			if err != nil {
				log.Printf("%s: bad sample: %v", topic, err)
				return
			}
			log.Printf("%s: %s %s", topic, s.At.Format("15:04:05.000"), s)
		case strings.HasSuffix(topic, "/"+mqtt.TopicCmd):
			cmd, err := c.DecodeCommand(data)
			if err != nil {
				log.Printf("%s: bad command: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, cmd)
		case strings.HasSuffix(topic, "/"+mqtt.TopicState) && c == payload.JSON,
			strings.HasSuffix(topic, "/"+mqtt.TopicFault):
			log.Printf("%s: %s", topic, string(data))
		default:
			log.Printf("%s: %d bytes", topic, len(data))
		}
	}))
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
