package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/adclink/pkg/bridge/mqtt"
	"github.com/robotalks/adclink/pkg/bridge/payload"
	"github.com/robotalks/adclink/pkg/bridge/websocket"
	"github.com/robotalks/adclink/pkg/cli/sh"
	"github.com/robotalks/adclink/pkg/config"
	"github.com/robotalks/adclink/pkg/device"
	"github.com/robotalks/adclink/pkg/framework"

	_ "github.com/robotalks/adclink/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

var flags = config.SetupFlags(nil)

func bridges(conf *config.Config, dev *device.Device) ([]framework.Runnable, error) {
	var runners []framework.Runnable
	if conf.MQTT.URL != "" {
		codec, err := payload.CodecByName(conf.MQTT.Codec)
		if err != nil {
			return nil, err
		}
		q, err := mqtt.NewQueueFromURL(conf.MQTT.URL)
		if err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		runners = append(runners, framework.NamedRun("mqtt", mqtt.NewBridge(q, dev, codec, conf.MQTT.ID)))
	}
	if conf.WebSocket.Addr != "" {
		codec, err := payload.CodecByName(conf.WebSocket.Codec)
		if err != nil {
			return nil, err
		}
		feed := websocket.NewFeed(dev, codec)
		dev.Subscribe(feed)
		runners = append(runners, framework.NamedRun("websocket", &websocket.Server{Addr: conf.WebSocket.Addr, Feed: feed}))
	}
	return runners, nil
}

func run() error {
	conf, err := flags.Resolve()
	if err != nil {
		return err
	}
	opts, err := conf.DeviceOptions()
	if err != nil {
		return err
	}
	dev := device.New(opts)
	shell := sh.New(conf, dev)
	runners, err := bridges(conf, dev)
	if err != nil {
		return err
	}

	runner := framework.NewRunner().HandleSignals()
	runner.Go(framework.NamedRun("reader", dev), framework.NamedRun("drain", dev.Queue))
	runner.Go(runners...)
	err = shell.Run(runner.Context, flag.Args()...)
	runner.Stop()
	var errs framework.AggregatedError
	errs.Add(err, runner.Wait())
	return errs.Aggregate()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if err := run(); err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(1)
	}
}
