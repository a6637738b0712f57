// Package worker drains the job queue sequentially, transitioning each job
// through running into a terminal status around its handler execution. One
// worker owns a queue file at a time; jobs run one at a time in priority
// order.
package worker
