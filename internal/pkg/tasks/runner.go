package tasks

import (
	"context"
	"log"
	"sync"
	"time"
)

// Runner выполняет побочные эффекты (запись реплея, ачивки, анонсы) в
// отдельных горутинах и умеет дождаться их при остановке процесса.
// Ошибка задачи логируется и не влияет на породивший ее запрос.
type Runner struct {
	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRunner создает новый исполнитель фоновых задач
func NewRunner() *Runner {
	return &Runner{}
}

// Go запускает задачу. После начала остановки новые задачи молча
// отбрасываются: процесс уже завершается.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		log.Printf("[Tasks] Задача '%s' отброшена: исполнитель остановлен", name)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Printf("[Tasks] Паника в задаче '%s': %v", name, p)
			}
		}()

		if err := fn(context.Background()); err != nil {
			log.Printf("[Tasks] Задача '%s' завершилась с ошибкой: %v", name, err)
		}
	}()
}

// Shutdown ждет завершения запущенных задач не дольше timeout.
// Возвращает false, если дождаться не удалось.
func (r *Runner) Shutdown(timeout time.Duration) bool {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		log.Printf("[Tasks] Не все фоновые задачи завершились за %v", timeout)
		return false
	}
}
