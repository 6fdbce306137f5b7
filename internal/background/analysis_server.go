// Package background hosts the interaction analysis server, a bounded pool of
// workers that score telemetry logs off the request goroutines.
package background

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vouchpost/vouchpost/pkg/interaction"
)

type analysisJob struct {
	interactions []interaction.Interaction
	chanResult   chan analysisResult
}

type analysisResult struct {
	score float32
	err   error
}

// AnalysisServer runs interaction scoring on a fixed number of workers so a burst of
// verification traffic cannot fan out into unbounded goroutines.
type AnalysisServer struct {
	wg         sync.WaitGroup
	chanQuit   chan int
	chanJob    chan analysisJob
	NumWorkers int // The number of Go routines that will be created to perform the task. Don't change the value after creation or the server might not be able to stop as expected.
	isStarting bool
	isStarted  bool
	isStopping bool
}

func NewAnalysisServer(numWorkers int) *AnalysisServer {
	return &AnalysisServer{
		wg:         sync.WaitGroup{},
		chanQuit:   make(chan int),
		chanJob:    make(chan analysisJob),
		NumWorkers: numWorkers,
		isStarting: false,
		isStarted:  false,
		isStopping: false,
	}
}

// Start starts the analysis server and spawns its workers.
func (s *AnalysisServer) Start() error {
	// Don't start the server again if it has been started.
	log.Infoln("Starting the interaction analysis server...")

	if s.isStarting {
		return fmt.Errorf("the interaction analysis server is already starting")
	} else if s.isStarted {
		return fmt.Errorf("the interaction analysis server is already started")
	}

	s.isStarting = true

	log.Tracef("Creating %v analysis workers...\n", s.NumWorkers)
	for id := 0; id < s.NumWorkers; id++ {
		s.wg.Add(1)
		go createAnalysisServerWorker(id, &s.wg, s.chanJob, s.chanQuit)
	}

	s.isStarting = false
	s.isStarted = true
	log.Infoln("The interaction analysis server is started.")

	return nil
}

func createAnalysisServerWorker(id int, wg *sync.WaitGroup, chanJob <-chan analysisJob, chanQuit chan int) {
	defer wg.Done()

	for {
		select {
		case job := <-chanJob:
			score, err := interaction.Analyze(job.interactions)
			if err != nil {
				log.Debugf("Analysis worker #%v rejected a telemetry log: %v\n", id, err)
			}
			job.chanResult <- analysisResult{score: score, err: err}
		case <-chanQuit:
			return
		}
	}
}

// Analyze submits one telemetry log to the pool and waits for its score. It blocks
// until a worker picks the job up or the context is cancelled.
func (s *AnalysisServer) Analyze(ctx context.Context, interactions []interaction.Interaction) (float32, error) {
	job := analysisJob{
		interactions: interactions,
		chanResult:   make(chan analysisResult, 1),
	}

	select {
	case s.chanJob <- job:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case result := <-job.chanResult:
		return result.score, result.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Stop stops the analysis server workers.
//
// Returns
//   a wait group that can be used to block the caller Go routine
func (s *AnalysisServer) Stop() (*sync.WaitGroup, error) {
	// Don't send stop signals again if the server has already been called to stop.
	if s.isStopping {
		return nil, fmt.Errorf("the interaction analysis server is already stopping")
	} else if !s.isStarted {
		return nil, fmt.Errorf("the interaction analysis server is already stopped")
	}

	s.isStopping = true

	// Start sending stop signals to all the workers
	for id := 0; id < s.NumWorkers; id++ {
		s.chanQuit <- 0
	}

	s.isStarted = false

	return &s.wg, nil
}
