package pubsub

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Каналы шины инвалидации. Имена и формат полезной нагрузки — внешний
// контракт: их публикуют и слушают соседние сервисы.
const (
	ChannelBan          = "peppy:ban"                 // decimal user id
	ChannelRename       = "peppy:change_username"     // JSON {"userID": N}
	ChannelStatsRefresh = "peppy:update_cached_stats" // decimal user id
	ChannelPassChange   = "peppy:change_pass"         // JSON {"user_id": N}
	ChannelClanUpdate   = "rosu:clan_update"          // decimal clan id
	ChannelMapDecache   = "ussr:bmap_decache"         // beatmap md5
	ChannelLBRefresh    = "ussr:lb_refresh"           // "md5:mode:variant"
	ChannelRecalcPP     = "ussr:recalc_pp"            // JSON {beatmap_md5,user_id,score_id,new_pp}
	ChannelFirstPlace   = "ussr:first_place"          // JSON {user_id,beatmap_md5,mode,variant,score_id}
)

// Handler обрабатывает одно событие шины. Обработчики обязаны быть
// идемпотентными: опубликовавший процесс применяет событие и локально,
// и при доставке через Redis.
type Handler func(ctx context.Context, payload []byte)

// Bus — шина инвалидации поверх PubSubProvider. На каждый канал при старте
// создается одна подписка и одна горутина-диспетчер; порядок событий
// сохраняется в пределах канала.
type Bus struct {
	provider   PubSubProvider
	instanceID string

	mu       sync.Mutex
	handlers map[string]Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBus создает новую шину инвалидации
func NewBus(provider PubSubProvider) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		provider:   provider,
		instanceID: uuid.NewString(),
		handlers:   make(map[string]Handler),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// InstanceID возвращает уникальный ID этого экземпляра шины.
func (b *Bus) InstanceID() string {
	return b.instanceID
}

// Handle регистрирует обработчик канала. Регистрация после Start не
// поддерживается.
func (b *Bus) Handle(channel string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channel] = h
}

// Start подписывается на все зарегистрированные каналы и запускает
// горутины-диспетчеры.
func (b *Bus) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	log.Printf("[Bus] Запуск шины инвалидации, экземпляр %s, каналов: %d",
		b.instanceID, len(b.handlers))

	for channel, handler := range b.handlers {
		msgCh, err := b.provider.Subscribe(b.ctx, channel)
		if err != nil {
			return err
		}

		b.wg.Add(1)
		go b.dispatch(channel, handler, msgCh)
	}
	return nil
}

// dispatch последовательно применяет события одного канала.
func (b *Bus) dispatch(channel string, handler Handler, msgCh <-chan []byte) {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		case payload, ok := <-msgCh:
			if !ok {
				log.Printf("[Bus] Канал '%s' закрыт, диспетчер остановлен", channel)
				return
			}
			b.apply(channel, handler, payload)
		}
	}
}

// apply выполняет обработчик, гася панику: одно битое событие не должно
// останавливать диспетчер канала.
func (b *Bus) apply(channel string, handler Handler, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Bus] Паника в обработчике канала '%s': %v", channel, r)
		}
	}()
	handler(b.ctx, payload)
}

// Publish публикует событие и сразу применяет его локально. Локальное
// применение не зависит от провайдера: в одиночном режиме (NoOpPubSub)
// события иначе не дошли бы и до самого публикующего.
func (b *Bus) Publish(channel string, payload []byte) error {
	b.mu.Lock()
	handler, ok := b.handlers[channel]
	b.mu.Unlock()

	if ok {
		b.apply(channel, handler, payload)
	}

	if err := b.provider.Publish(channel, payload); err != nil {
		log.Printf("[Bus] Ошибка публикации в канал '%s': %v", channel, err)
		return err
	}
	return nil
}

// Stop останавливает диспетчеры и дожидается их завершения.
func (b *Bus) Stop() {
	b.cancel()
	b.wg.Wait()
	log.Printf("[Bus] Шина инвалидации остановлена, экземпляр %s", b.instanceID)
}
