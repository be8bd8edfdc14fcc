// Command stream_client is a development client for the realtime relay.
// It opens the websocket, binds a session and either streams a raw PCM
// file or sits idle printing transcript updates.
//
// Usage:
//
//	go run scripts/stream_client.go -owner user-42 -session <session_id> [-audio meeting.pcm]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

const chunkBytes = 3200 // 100ms of 16kHz 16-bit mono PCM

func main() {
	addr := flag.String("addr", "ws://localhost:8080", "server websocket base URL")
	owner := flag.String("owner", "dev-user", "owner id for the connection")
	sessionID := flag.String("session", "", "session id to bind (required)")
	audioPath := flag.String("audio", "", "raw PCM file to stream, omit to just listen")
	flag.Parse()

	if *sessionID == "" {
		log.Fatal("❌ -session is required (create one via POST /api/v1/sessions/join)")
	}

	url := fmt.Sprintf("%s/ws/%s", *addr, *owner)
	log.Printf("🔌 Connecting to %s...", url)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer conn.Close()

	// Bind the session before any audio.
	bind := map[string]string{"type": "session_started", "session_id": *sessionID}
	if err := conn.WriteJSON(bind); err != nil {
		log.Fatalf("❌ Failed to bind session: %v", err)
	}
	log.Printf("📤 Sent session_started for %s", *sessionID)

	go printFrames(conn)

	if *audioPath != "" {
		if err := streamAudio(conn, *audioPath); err != nil {
			log.Fatalf("❌ Audio streaming failed: %v", err)
		}
		log.Println("✅ Finished streaming audio, waiting for transcripts (Ctrl+C to exit)")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Println("👋 Closing connection")
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// streamAudio sends the file as binary frames paced at real time.
func streamAudio(conn *websocket.Conn, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, chunkBytes)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	sent := 0
	for range ticker.C {
		n, err := f.Read(buf)
		if n > 0 {
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
			sent += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	log.Printf("📤 Streamed %d bytes of audio", sent)
	return nil
}

// printFrames logs every server frame until the connection drops.
func printFrames(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("🔌 Connection closed: %v", err)
			os.Exit(0)
		}

		var frame struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("⚠️ Unparseable frame: %s", data)
			continue
		}

		switch frame.Type {
		case "transcript_update":
			var update struct {
				Text    string `json:"text"`
				IsFinal bool   `json:"is_final"`
				Speaker string `json:"speaker"`
			}
			json.Unmarshal(frame.Data, &update)
			marker := "…"
			if update.IsFinal {
				marker = "✔"
			}
			if update.Speaker != "" {
				log.Printf("📥 [%s] %s: %s", marker, update.Speaker, update.Text)
			} else {
				log.Printf("📥 [%s] %s", marker, update.Text)
			}
		default:
			log.Printf("📥 %s: %s", frame.Type, frame.Data)
		}
	}
}
