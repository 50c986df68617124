package diff_test

const mainModelHeader = `diff --git a/cola/models/main.py b/cola/models/main.py
index 3b5cdd1..9f0e2a7 100644
--- a/cola/models/main.py
+++ b/cola/models/main.py`

// mainModelBody is a single hunk of 23 lines: 8 context, 2 removed, 13 added.
const mainModelBody = `@@ -6,10 +6,21 @@ from cola import gitcmds
 from cola import core
 from cola import git
 from cola import utils
-from cola import errors
+from cola import errors
+from cola import observable
+from cola import signals
 
 class MainModel(object):
-    """Provides a friendly wrapper for doing common git operations."""
+    """Provides a friendly wrapper for doing common git operations.
+
+    The model is observable and notifies listeners
+    whenever repository state changes.
+    """
+
+    message_updated = 'updated'
+    message_about_to_update = 'about_to_update'
+    message_commit_message_changed = 'commit_message_changed'
 
     def __init__(self, cwd=None):
+        observable.Observable.__init__(self)
         """Reads git repository settings and sets several methods
`

const readmeHeader = `diff --git a/README b/README
index 1111111..2222222 100644
--- a/README
+++ b/README`

const twoHunkBody = `@@ -1,3 +1,3 @@
 alpha
-beta
+BETA
 gamma
@@ -20,3 +20,4 @@ section two
 twenty
-twenty-one
+twenty-one!
+twenty-one and a half
 twenty-two
`

const threeAddsBody = `@@ -1 +1,4 @@
 ctx
+a
+b
+c
`

const twoDeletesBody = `@@ -1,2 +0,0 @@
-first
-second
`

const deletedHeader = `diff --git a/gone.txt b/gone.txt
deleted file mode 100644
index 1111111..0000000
--- a/gone.txt
+++ /dev/null`

const newFileHeader = `diff --git a/new.txt b/new.txt
new file mode 100644
index 0000000..2222222
--- /dev/null
+++ b/new.txt`
