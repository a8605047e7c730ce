package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// NMEAProvider reads position fixes from a GPS receiver attached to a serial
// port, one GGA sentence at a time.
type NMEAProvider struct {
	port     string
	baudRate int
}

// NewNMEAProvider creates a provider for the GPS receiver on the given port.
func NewNMEAProvider(port string, baudRate int) *NMEAProvider {
	return &NMEAProvider{port: port, baudRate: baudRate}
}

// Current opens the port and scans sentences until a GGA fix arrives or the
// context expires. The port is opened per request so a receiver that is
// unplugged between ticks surfaces as a fresh error, not a wedged handle.
func (p *NMEAProvider) Current(ctx context.Context) (Fix, error) {
	s, err := serial.OpenPort(&serial.Config{Name: p.port, Baud: p.baudRate})
	if err != nil {
		return Fix{}, fmt.Errorf("%w: opening %s: %w", ErrUnsupported, p.port, err)
	}
	defer s.Close()

	type result struct {
		fix Fix
		err error
	}
	ch := make(chan result, 1)

	go func() {
		fix, err := p.scanForFix(bufio.NewScanner(s))
		ch <- result{fix: fix, err: err}
	}()

	select {
	case r := <-ch:
		return r.fix, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Fix{}, ErrTimeout
		}
		return Fix{}, ctx.Err()
	}
}

func (p *NMEAProvider) scanForFix(scanner *bufio.Scanner) (Fix, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$GPGGA") && !strings.HasPrefix(line, "$GNGGA") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			continue // garbled sentence, keep scanning
		}

		gga, ok := sentence.(nmea.GGA)
		if !ok {
			continue
		}
		if gga.FixQuality == nmea.Invalid {
			return Fix{}, ErrDisabled
		}

		// HDOP stands in for accuracy; the receiver reports no better figure.
		accuracy := float64(gga.HDOP)
		return Fix{
			Latitude:  gga.Latitude,
			Longitude: gga.Longitude,
			Accuracy:  &accuracy,
		}, nil
	}

	if err := scanner.Err(); err != nil {
		return Fix{}, fmt.Errorf("reading GPS stream: %w", err)
	}

	return Fix{}, ErrDisabled
}
