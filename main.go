package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"

	"github.com/gregLibert/sdmmc/pkg/blockdev"
	"github.com/gregLibert/sdmmc/pkg/sdcard"
	"github.com/gregLibert/sdmmc/pkg/sdhost"
	"github.com/gregLibert/sdmmc/pkg/sdioc"
	"github.com/gregLibert/sdmmc/pkg/sdsim"
)

var (
	blocks    = flag.Uint("blocks", 8192, "Card capacity in 512-byte blocks")
	highCap   = flag.Bool("hc", true, "Simulate a block addressed SDHC card")
	version1  = flag.Bool("v1", false, "Simulate a version 1.x card that ignores CMD8")
	polling   = flag.Bool("polling", false, "Move data through the FIFO instead of DMA")
	width     = flag.Int("width", 4, "Data bus width, 1 or 4")
	highSpeed = flag.Bool("highspeed", false, "Switch the card to high speed at 50MHz")
	coreClock = flag.Uint("core_clock", 168000000, "Core clock in Hz used to derive poll budgets")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	// --- 1. Hardware Setup ---
	sim := sdsim.New(sdsim.Options{
		Blocks:       uint32(*blocks),
		HighCapacity: *highCap,
		Version1:     *version1,
		ReadyAfter:   3,
		HighSpeed:    true,
		BusyPolls:    2,
	})
	host := sdhost.New(sim, sim.DMA(), sdcard.TimingForCoreClock(uint32(*coreClock)), hostConfig())

	// --- 2. Execution Flow ---
	step1Init(host)
	step2ReadWrite(host)
	step3Erase(host, sim)
	step4Snapshot(host)

	fmt.Println("\n>> Demo Finished Successfully")
}

// =========================================================================
// Helper Functions
// =========================================================================

func hostConfig() sdhost.Config {
	cfg := sdhost.DefaultConfig()
	if *polling {
		cfg.Mode = sdcard.PollingMode
	}
	switch *width {
	case 1:
		cfg.Card.BusWidth = sdioc.BusWidth1Bit
	case 4:
		cfg.Card.BusWidth = sdioc.BusWidth4Bit
	default:
		log.Fatalf("Unsupported bus width %d", *width)
	}
	if *highSpeed {
		cfg.Card.SpeedMode = sdioc.HighSpeed
		cfg.Card.Clock = sdioc.Clock50M
	}
	return cfg
}

func banner(title string) {
	fmt.Println("\n=============================================")
	fmt.Println(" " + title)
	fmt.Println("=============================================")
}

// step1Init brings the card up, retrying for a few seconds.
func step1Init(host *sdhost.Host) {
	banner("Step 1: CARD INITIALIZATION")

	host.Card().Commands().Record = true
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 5 * time.Second
	if err := host.InitWithRetry(context.Background(), bo); err != nil {
		log.Fatalf("Error initializing card: %v (error code %s)", err, host.ErrorCode().Verbose())
	}

	trace := host.Card().Commands().TakeTrace()
	host.Card().Commands().Record = false
	fmt.Printf(">> %d commands exchanged\n", len(trace))
	fmt.Println(trace.Describe())
	fmt.Println(host.Card().Describe())
}

// step2ReadWrite writes a pattern across a block boundary and reads it back.
func step2ReadWrite(host *sdhost.Host) {
	banner(fmt.Sprintf("Step 2: READ / WRITE (%s)", host.DeviceMode()))

	dev := blockdev.New(host)
	msg := bytes.Repeat([]byte("sdmmc "), 200)
	off := int64(3*blockdev.BlockSize + 100)

	if _, err := dev.WriteAt(msg, off); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
	fmt.Printf(">> Wrote %d bytes at offset %d (context %02X)\n", len(msg), off, host.Card().Context())

	got := make([]byte, len(msg))
	if _, err := dev.ReadAt(got, off); err != nil {
		log.Fatalf("Read failed: %v", err)
	}
	fmt.Printf(">> Read back %d bytes (context %02X)\n", len(got), host.Card().Context())
	if !bytes.Equal(got, msg) {
		log.Fatal("Read back data differs from written data")
	}

	p := &blockdev.Partition{Dev: dev}
	h, err := p.Hash(int64(8 * blockdev.BlockSize))
	if err != nil {
		log.Fatalf("Hash failed: %v", err)
	}
	fmt.Printf(">> SHA256 of the first 8 blocks: %x\n", h)
}

// step3Erase erases the blocks written in step 2.
func step3Erase(host *sdhost.Host, sim *sdsim.Card) {
	banner("Step 3: ERASE")

	if err := host.Erase(3, 6); err != nil {
		log.Printf("Erase failed: %v (error code %s)", err, host.ErrorCode().Verbose())
		return
	}
	if !bytes.Equal(sim.Block(4), make([]byte, blockdev.BlockSize)) {
		log.Fatal("Block 4 not erased")
	}
	fmt.Println(">> Blocks 3 to 6 erased")

	status, err := host.Card().Status()
	if err != nil {
		log.Printf("CMD13 failed: %v", err)
		return
	}
	fmt.Printf(">> Card status: %s\n", status.Verbose())
}

// step4Snapshot exports the card registers as BER-TLV and parses them back.
func step4Snapshot(host *sdhost.Host) {
	banner("Step 4: REGISTER SNAPSHOT")

	if _, err := host.Card().ReadSCR(); err != nil {
		log.Printf("ACMD51 failed: %v", err)
	}

	data, err := host.Card().Snapshot().Encode()
	if err != nil {
		log.Fatalf("Snapshot encoding failed: %v", err)
	}
	fmt.Printf(">> %d bytes: %X\n", len(data), data)

	snap, err := sdcard.ParseSnapshot(data)
	if err != nil {
		log.Fatalf("Snapshot parsing failed: %v", err)
	}
	fmt.Println(snap.Describe())
}
