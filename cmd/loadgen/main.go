package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/whosthatpokemon/internal/domain"
)

// Simulated player pool. Each simulated player submits guess results with a
// stable uuid so leaderboard accumulation behaves like real traffic.
var trainerPrefixes = []string{
	"Ash", "Misty", "Brock", "Gary", "Erika", "Sabrina", "Koga", "Blaine", "Lance", "Lorelei",
	"Cynthia", "Steven", "Wallace", "Iris", "Alder", "Diantha", "Leon", "Hop", "Marnie", "Bede",
	"Red", "Blue", "Ethan", "Lyra", "May", "Brendan", "Dawn", "Lucas", "Hilda", "Hilbert",
}

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "game-results", "Kafka topic")
	totalPlayers := flag.Int("players", 500, "Number of simulated players")
	rate := flag.Int("rate", 50, "Game results per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("Game result load generator")
	fmt.Printf("  Brokers:     %s\n", *brokers)
	fmt.Printf("  Topic:       %s\n", *topic)
	fmt.Printf("  Players:     %d\n", *totalPlayers)
	fmt.Printf("  Results/sec: %d\n", *rate)
	fmt.Println()

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Stable player ids across the run
	playerIDs := make([]string, *totalPlayers)
	for i := range playerIDs {
		playerIDs[i] = uuid.New().String()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	sendEvent := func(event domain.GameResultEvent) {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal event: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(event.UserID),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	interval := time.Second / time.Duration(*rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	shutdown := func(reason string) {
		fmt.Printf("\n%s\n", reason)
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("Completed. Sent: %d, Errors: %d\n",
			atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	var sent int64
	for {
		select {
		case <-sigChan:
			shutdown("Shutting down...")
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				shutdown("Duration reached, shutting down...")
				return
			}

			// Roughly two thirds of simulated guesses are correct, scored
			// the way a real round would score them.
			idx := rand.Intn(*totalPlayers)
			correct := rand.Intn(3) > 0
			var score int64
			var correctGuesses int64
			if correct {
				score = int64(rand.Intn(120) + 10)
				correctGuesses = 1
			}

			sendEvent(domain.GameResultEvent{
				UserID:         playerIDs[idx],
				SessionID:      uuid.New().String(),
				Score:          score,
				CorrectGuesses: correctGuesses,
				TotalGames:     1,
				Timestamp:      time.Now().UTC(),
			})
			atomic.AddInt64(&sent, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] Sent: %d | Acked: %d | Errors: %d (simulating %s and %d friends)\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&sent),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
				trainerPrefixes[rand.Intn(len(trainerPrefixes))],
				*totalPlayers-1,
			)
		}
	}
}
