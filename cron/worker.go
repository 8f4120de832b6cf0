package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"remindly/config"
	"remindly/models"
	"remindly/services/push"
	"remindly/services/tasks"

	"github.com/hibiken/asynq"
)

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(dispatcher push.DispatchService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(dispatcher))

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(dispatcher push.DispatchService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		payload := models.NotificationPayload{
			Title: p.Title,
			Body:  p.Body,
			Data: map[string]string{
				"type":       "reminder",
				"reminderId": p.ReminderID,
				"fireDate":   p.FireDate,
			},
		}

		switch p.Target {
		case models.ReminderTargetUser:
			if p.EventID != "" {
				if _, err := dispatcher.SendEventReminder(ctx, p.ID, p.EventID, payload); err != nil {
					log.Printf("[ReminderHandler] failed to send event reminder: %v", err)
					return err
				}
				return nil
			}
			if res := dispatcher.SendNotificationToUser(ctx, p.ID, payload); !res.Success {
				log.Printf("[ReminderHandler] failed to send reminder: %s", res.Error)
			}
		case models.ReminderTargetGuest:
			if res := dispatcher.SendNotificationToDevice(ctx, p.ID, p.Title, p.Body, payload.Data); !res.Success {
				log.Printf("[ReminderHandler] failed to send guest reminder: %s", res.Error)
			}
		default:
			log.Printf("[ReminderHandler] unknown target type: %s", p.Target)
		}
		return nil
	}
}
