package email

const subjectVerificationFmt = "Verify your email address for %s"
