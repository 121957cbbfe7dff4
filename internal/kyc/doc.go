// kyc package issues Sumsub verification session links.
//
// **workflows**
// Generate requests a session link for a user.
// Regenerate resets the user's verification state and then requests a new link:
//
//	status (external id -> applicant id) -> reset (applicant id) -> link (external id)
//
// Steps run strictly in order and the next step only starts after the previous one succeeds.
// The applicant id is always taken from the status response of the same invocation.
//
// **failures**
// Both workflows return ok=false on any failure; errors never reach the caller.
// Every failure is passed to a Reporter with the step and the sumsub error kind (transport, remote_rejection, protocol)
// so operators can tell a missing user from a network outage or a rejected signature.
//
// If the reset succeeds but the link request fails the user is left reset without a link.
// This is not retried or compensated: the failure is reported with AfterReset=true.
package kyc
