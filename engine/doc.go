// Package engine talks to the remote process engine. Two route families
// are supported behind a Dialect and both decode into the same Snapshot:
//
//	api     GET /api/process/status/{id}  {activeNodes, pendingUserTasks, completedNodes}
//	legacy  GET /process/status/{id}      {activeTasks, completedActivities, currentActivity}
//	auto    api route first, legacy route on 404, decoded by payload keys
package engine
