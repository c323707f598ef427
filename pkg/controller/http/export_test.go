package http

// VerifySlackSignature exposes signature verification for tests
var VerifySlackSignature = verifySlackSignature
