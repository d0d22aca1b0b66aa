// Command press drives a scripted workload of set/get/del requests against
// an Ignite server to measure throughput, mirroring the original load
// generator's concurrency-count/request-count/operation arguments.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ignitedb/ignite/internal/frame"
	flag "github.com/spf13/pflag"
)

func main() {
	addr := flag.StringP("addr", "a", "127.0.0.1", "server address")
	port := flag.IntP("port", "p", 9000, "server port")
	op := flag.StringP("op", "o", "set", "operation to press: set, get, or del")
	users := flag.IntP("users", "u", 100, "number of concurrent connections")
	requests := flag.IntP("requests", "r", 100, "requests sent per connection")
	flag.Parse()

	switch *op {
	case "set", "get", "del":
	default:
		fmt.Fprintln(os.Stderr, "invalid op:", *op)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	latencies := make([]time.Duration, *users)

	start := time.Now()
	for u := 0; u < *users; u++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			latencies[i] = press(*addr, *port, *op, *requests)
		}(u)
	}
	wg.Wait()
	elapsed := time.Since(start)

	var total time.Duration
	for _, l := range latencies {
		total += l
	}

	totalRequests := *users * *requests
	fmt.Printf("Time: %s\n", elapsed)
	fmt.Printf("Throughput: %.2f req/s\n", float64(totalRequests)/elapsed.Seconds())
	fmt.Printf("Avg connection time: %s\n", total/time.Duration(*users))
}

// press opens a single connection, sends requests sequential requests of
// op, drains each reply, and returns how long the whole exchange took.
func press(addr string, port int, op string, requests int) time.Duration {
	netConn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect failed:", err)
		return 0
	}
	conn := frame.NewConn(netConn)
	defer conn.Close()

	start := time.Now()
	for i := 0; i < requests; i++ {
		if err := conn.Send([]byte(request(op))); err != nil {
			fmt.Fprintln(os.Stderr, "send failed:", err)
			return time.Since(start)
		}
		if err := drainReply(conn); err != nil {
			fmt.Fprintln(os.Stderr, "read reply failed:", err)
			return time.Since(start)
		}
	}
	return time.Since(start)
}

func drainReply(conn *frame.Conn) error {
	for !conn.Ready() {
		if _, err := conn.Fill(); err != nil {
			return err
		}
	}
	_, err := conn.Request()
	return err
}

func request(op string) string {
	switch op {
	case "set":
		return "set " + randomString() + " " + randomString()
	case "get":
		return "get " + randomString()
	default:
		return "del " + randomString()
	}
}

func randomString() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "fallback"
	}
	return hex.EncodeToString(buf)
}
