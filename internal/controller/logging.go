package controller

// Logging helpers route all controller output through the scrubber and,
// when configured, mirror it to the structured cloud logger.

func (c *Controller) logInfo(message string) {
	msg := c.scrubber.Scrub(message)
	c.logger.Println(msg)
	if c.cloudLogger != nil {
		c.cloudLogger.Info(msg)
	}
}

func (c *Controller) logWarning(message string) {
	msg := c.scrubber.Scrub(message)
	c.logger.Println("Warning: " + msg)
	if c.cloudLogger != nil {
		c.cloudLogger.Warning(msg)
	}
}

func (c *Controller) logError(message string) {
	msg := c.scrubber.Scrub(message)
	c.logger.Println("Error: " + msg)
	if c.cloudLogger != nil {
		c.cloudLogger.Error(msg)
	}
}
