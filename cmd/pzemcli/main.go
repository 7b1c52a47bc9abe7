// Command pzemcli talks to a PZEM-004T meter over a serial line from an
// interactive shell.
package main

import (
	"fmt"
	"os"

	"github.com/berfenger/pzem2mqtt/pkg/pzem"

	"github.com/abiosoft/ishell"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	pflag.String("device", "/dev/ttyUSB0", "serial device")
	pflag.Int("baud_rate", pzem.DefaultBaudRate, "serial line speed")
	pflag.String("driver", pzem.SerialDriverBugst, "serial driver: bugst or tarm")
	pflag.Uint8("address", pzem.DefaultAddress, "default meter address")
	pflag.Int64("byte_timeout_millis", pzem.DefaultByteTimeout.Milliseconds(), "per-byte receive timeout")
	pflag.String("reset_ack", "legacy", "reset acknowledgement rule: legacy, echo or full")
	pflag.Bool("debug", false, "dump frames")
	pflag.Parse()

	viper.SetEnvPrefix("pzemcli")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := zap.NewNop()
	if viper.GetBool("debug") {
		logger = zap.Must(zap.NewDevelopment())
	}
	defer logger.Sync()

	ack, err := pzem.ParseResetAck(viper.GetString("reset_ack"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	session := &Session{
		Serial: pzem.SerialConfig{
			Device:   viper.GetString("device"),
			BaudRate: viper.GetInt("baud_rate"),
			Driver:   viper.GetString("driver"),
		},
		Address:     uint8(viper.GetUint("address")),
		ByteTimeout: msToDuration(viper.GetInt64("byte_timeout_millis")),
		ResetAck:    ack,
		Logger:      logger,
		open:        pzem.OpenSerial,
	}
	defer session.Close()

	shell := ishell.New()
	shell.SetPrompt(fmt.Sprintf("[%s] > ", session.Serial.Device))
	for _, cmd := range session.Commands() {
		shell.AddCmd(cmd)
	}

	// with arguments, run a single command and exit
	if args := pflag.Args(); len(args) > 0 {
		if err := shell.Process(args...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	shell.Println("pzemcli: type help for commands")
	shell.Run()
}
