// audiofeed strips the header from a WAV file and writes the raw PCM
// payload to stdout at real-time pace, so a recorded file can drive the
// live decode path:
//
//	audiofeed -audio sample.wav | speech-decode-service
package main

import (
	"encoding/binary"
	"flag"
	"io"
	"log"
	"os"
	"time"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// chunkIntervalMs paces output to match a live microphone.
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "testdata/sample-16khz.wav", "Path to WAV file (16-bit mono PCM)")
	realtime := flag.Bool("realtime", true, "Pace output at the file's sample rate")
	flag.Parse()

	log.SetOutput(os.Stderr)

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}

	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}
	if bitsPerSample != 16 {
		log.Fatalf("Only 16-bit samples supported, got %d", bitsPerSample)
	}
	if numChannels != 1 {
		log.Printf("Warning: %d channels, decoder expects mono", numChannels)
	}

	// One chunk per pacing interval: bytes/sec * interval.
	chunkSize := int(sampleRate) * 2 * int(numChannels) * chunkIntervalMs / 1000

	chunk := make([]byte, chunkSize)
	var totalBytes int64
	var chunkNum int
	startTime := time.Now()

	for {
		n, err := f.Read(chunk)
		if n > 0 {
			if _, werr := os.Stdout.Write(chunk[:n]); werr != nil {
				log.Fatalf("Failed to write audio: %v", werr)
			}
			chunkNum++
			totalBytes += int64(n)
			if chunkNum%50 == 0 {
				log.Printf("Fed chunk %d (%d bytes total)", chunkNum, totalBytes)
			}
			if *realtime {
				time.Sleep(chunkIntervalMs * time.Millisecond)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}
	}

	log.Printf("Finished feeding: %d chunks, %d bytes in %v", chunkNum, totalBytes, time.Since(startTime))
}
