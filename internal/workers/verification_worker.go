package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/chainfolio/chainfolio/internal/providers/verifier"
	"github.com/chainfolio/chainfolio/internal/services"
	"github.com/chainfolio/chainfolio/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// VerificationWorkerPool drains queued verification requests from the Redis
// stream, runs the provider flow, and persists the outcome. Success and
// failure both complete the job; only transport-level provider errors leave
// the message pending for redelivery.
type VerificationWorkerPool struct {
	Redis         *redis.Client
	Verifications services.VerificationService
	Resumes       services.ResumeService
	Provider      verifier.Provider
	NumWorkers    int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *VerificationWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Verifications == nil || p.Resumes == nil || p.Provider == nil {
		return errors.New("VerificationWorkerPool missing dependency: Redis/Verifications/Resumes/Provider must be set")
	}
	if p.Stream == "" {
		p.Stream = services.VerifyStream
	}
	if p.Group == "" {
		p.Group = "verify-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "v"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *VerificationWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("verify stream read failed")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handle(ctx, consumer, msg)
			}
		}
	}
}

func (p *VerificationWorkerPool) handle(ctx context.Context, consumer string, msg redis.XMessage) {
	log := p.Logger.WithFields(logrus.Fields{
		"consumer": consumer,
		"msg_id":   msg.ID,
	})

	job, err := services.ParseVerifyJob(msg.Values)
	if err != nil {
		// malformed message can never succeed; ack it away
		log.WithError(err).Warn("dropping malformed verify job")
		p.ack(ctx, msg.ID)
		return
	}

	log = log.WithFields(logrus.Fields{
		"request_id": job.RequestID,
		"resume_id":  job.ResumeID,
		"method":     string(job.Method),
	})

	res, err := p.Resumes.Get(ctx, job.UserID, job.ResumeID)
	if err != nil {
		if utils.IsCode(err, utils.CodeNotFound) {
			// resume deleted while the job was queued
			log.Info("resume gone, dropping verify job")
			p.ack(ctx, msg.ID)
			return
		}
		log.WithError(err).Warn("failed to load resume, leaving job pending")
		return
	}

	out, err := p.Provider.Verify(ctx, verifier.Request{
		UserID:   job.UserID,
		ResumeID: job.ResumeID,
		Method:   job.Method,
		Basics:   res.Basics,
	})
	if err != nil {
		log.WithError(err).Warn("provider error, leaving job pending")
		return
	}

	if err := p.Verifications.Complete(ctx, job.UserID, job.ResumeID, out); err != nil {
		if utils.IsCode(err, utils.CodeNotFound) {
			log.Info("resume gone, dropping verify job")
			p.ack(ctx, msg.ID)
			return
		}
		log.WithError(err).Warn("failed to persist verification, leaving job pending")
		return
	}

	log.WithField("verified", out.Verified).Info("verification completed")
	p.ack(ctx, msg.ID)
}

func (p *VerificationWorkerPool) ack(ctx context.Context, msgID string) {
	if err := p.Redis.XAck(ctx, p.Stream, p.Group, msgID).Err(); err != nil {
		p.Logger.WithError(err).WithField("msg_id", msgID).Warn("xack failed")
	}
}
