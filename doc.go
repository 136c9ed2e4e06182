/*
Package fins implements the Omron FINS (Factory Interface Network Service)
protocol for communication with Omron PLCs over UDP and FINS/TCP.

Memory is addressed with the textual notation used on the PLC itself:
"D100" is data memory word 100, "CIO20.5" is bit 5 of CIO word 20. The
package resolves the mnemonic, range-checks the offset and picks the wire
area code; large transfers are split into protocol-sized chunks
transparently.

# Quick Start

	import (
		"context"
		"log"
		"time"

		"github.com/finslab/fins"
	)

	func main() {
		clientAddr := fins.NewAddress("", 9600, 0, 2, 0)
		plcAddr := fins.NewAddress("192.168.1.100", 9600, 0, 1, 0)

		client, err := fins.NewUDPClient(clientAddr, plcAddr)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := client.ReadWords(ctx, "D100", 5)
		if err != nil {
			log.Printf("Read error: %v", err)
			return
		}
		log.Printf("Data: %v", data)

		if err := client.WriteWords(ctx, "D100", []uint16{1, 2, 3}); err != nil {
			log.Printf("Write error: %v", err)
		}
	}

FINS/TCP works the same way through NewTCPClient; the node assignment
handshake runs during construction.

# Memory Areas

Supported mnemonics are CIO, W (WR), H (HR), A (AR), T (TIM), C (CNT),
D (DM) and E (EM). Timer and counter addresses read and write the present
values. A0-A447 is system-maintained and rejects writes.

# BCD Values

Many Omron programs keep numbers in binary-coded decimal. ReadBCD16 and
WriteBCD16 translate unsigned BCD words; ReadSignedBCD16 and
WriteSignedBCD16 additionally handle the three signed conventions
(BCDSignNibble, BCDSignBit, BCDTensComplement). A word that does not decode
under the chosen convention is returned as InvalidBCD rather than failing
the whole transfer.

# Interceptors

Interceptors wrap every operation; use them for logging, metrics, tracing,
validation and retries:

	logger, _ := zap.NewProduction()
	client.SetInterceptor(fins.ChainInterceptors(
		fins.LoggingInterceptor(logger),
		fins.RetryInterceptor(3, 100*time.Millisecond),
		fins.ValidationInterceptor(),
	))

# Plugins

Plugins hook the client lifecycle. ConnectionWatchdog, for example, tracks
uptime and emits connect/disconnect events:

	watchdog := fins.NewConnectionWatchdog(0)
	client.Use(watchdog)
	for evt := range watchdog.Events() {
		log.Printf("connection event: %+v", evt)
	}

# Auto-Reconnect

	client.EnableAutoReconnect(5, time.Second)

Operations during a reconnect respect their context deadlines; commands are
never replayed automatically.

# Testing with the PLC Simulator

	plcAddr := fins.NewAddress("127.0.0.1", 9600, 0, 10, 0)
	sim, err := fins.NewPLCSimulator(plcAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

The simulator backs every supported area with sparse memory and services
the clock, unit name, CPU status and cycle time commands, so client code can
be exercised end to end without hardware. Server.InlineClient returns an
in-process FINSClient over the same memory for tests that do not need
network frames.
*/
package fins
