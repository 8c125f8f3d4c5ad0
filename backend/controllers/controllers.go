// Package controllers wires HTTP requests to the services. Achievement
// triggers are dispatched after the primary mutation commits and never
// affect its outcome.
package controllers

import (
	"github.com/KevinT25/GameTracker-Backend/backend/achievements"

	"github.com/sirupsen/logrus"
)

// dispatchTrigger evaluates achievement rules in the background.
// Evaluation failures are logged and swallowed.
func dispatchTrigger(log *logrus.Logger, engine *achievements.Engine, userID uint, trigger achievements.Trigger, ctx achievements.Context) {
	if engine == nil {
		return
	}
	go func() {
		if _, err := engine.Evaluate(userID, trigger, ctx); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"trigger": trigger,
			}).Warn("achievement evaluation failed")
		}
	}()
}
