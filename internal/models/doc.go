// Package models defines the core domain records for Equi-share.
//
// # Records
//
//   - Expense: a shared cost recorded against a group and paid by one member
//   - Split: one member's share of an Expense with its own clearance flag
//   - Group: a set of members with one admin
//   - User: a registered account
//   - BalanceSummary: the derived owed / owed-to view for one user
//
// # Design Principles
//
// 1. **Exact money**: every amount is a money.Money, never a float
// 2. **Lookup keys only**: relationships use ID strings, never pointers, so a
// split cannot hold a stale copy of its user or group
// 3. **One-way clearance**: Cleared flips false to true and never back
// 4. **Expense owns splits**: deleting an expense deletes its splits
package models
