// Command client is an interactive line-oriented client for the Ignite
// wire protocol: each line of stdin is sent verbatim as a request and the
// server's reply is printed to stdout.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"

	"github.com/ignitedb/ignite/internal/frame"
	flag "github.com/spf13/pflag"
)

func main() {
	addr := flag.StringP("addr", "a", "127.0.0.1", "server address")
	port := flag.IntP("port", "p", 9000, "server port")
	flag.Parse()

	netConn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", *addr, *port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect failed:", err)
		os.Exit(1)
	}
	conn := frame.NewConn(netConn)
	defer conn.Close()

	replies := make(chan string)
	go readReplies(conn, replies)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := conn.Send([]byte(line)); err != nil {
			fmt.Fprintln(os.Stderr, "send failed:", err)
			return
		}
		reply, ok := <-replies
		if !ok {
			fmt.Println("server closed the connection")
			return
		}
		fmt.Println(reply)
	}
}

func readReplies(conn *frame.Conn, replies chan<- string) {
	defer close(replies)
	for {
		for conn.Ready() {
			payload, err := conn.Request()
			if err != nil {
				return
			}
			replies <- string(payload)
		}
		if _, err := conn.Fill(); err != nil {
			return
		}
	}
}
