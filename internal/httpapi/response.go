package httpapi

import (
	"encoding/json"
	"fmt"
	"net"
)

func writeStatusLine(conn net.Conn, status string, header string) {
	if header != "" {
		fmt.Fprintf(conn, "HTTP/1.0 %s\r\n%s\r\n", status, header)
		return
	}
	fmt.Fprintf(conn, "HTTP/1.0 %s\r\n\r\n", status)
}

func writeBadRequest(conn net.Conn) { writeStatusLine(conn, "400 Bad Request", "") }
func writeNotAllowed(conn net.Conn) { writeStatusLine(conn, "405 Method Not Allowed", "") }
func writeNotFound(conn net.Conn)   { writeStatusLine(conn, "404 Not Found", "") }

func writeText(conn net.Conn, contentType, body string) {
	writeStatusLine(conn, "200 OK", "Content-Type: "+contentType+"; charset=utf-8\r\n")
	fmt.Fprint(conn, body)
}

func writeJSON(conn net.Conn, v any) {
	writeStatusLine(conn, "200 OK", "Content-Type: text/json; charset=utf-8\r\n")
	_ = json.NewEncoder(conn).Encode(v)
}

func writeStreamHeader(conn net.Conn) {
	writeStatusLine(conn, "200 OK", "Content-Disposition: attachment\r\n")
}
