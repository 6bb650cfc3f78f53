package mailer

const verificationEmailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Verify your email</h2>
  <p>Thanks for signing up. Enter this code to verify your email address:</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 6px;">{verificationCode}</p>
  <p>The code expires in 24 hours. If you did not create an account, you can ignore this email.</p>
</body>
</html>`

const welcomeEmailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome, {name}!</h2>
  <p>Your email address has been verified and your account is ready to use.</p>
</body>
</html>`

const passwordResetRequestTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Reset your password</h2>
  <p>We received a request to reset your password. Click the link below to choose a new one:</p>
  <p><a href="{resetURL}">{resetURL}</a></p>
  <p>The link expires in 1 hour. If you did not request a reset, you can ignore this email.</p>
</body>
</html>`

const passwordResetSuccessTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Your password was changed</h2>
  <p>This is a confirmation that the password for your account has just been changed.</p>
  <p>If you did not do this, contact support immediately.</p>
</body>
</html>`
